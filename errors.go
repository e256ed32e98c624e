package sgfdata

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeSyntaxError      = "syntax_error"
	CodeCoercionFallback = "coercion_fallback"
	CodeUnknownEncoding  = "unknown_encoding"
	// Semantic checks on derived header attributes
	CodeDepthMinExceedsDrilled      = "depth_min_exceeds_drilled"
	CodeDepthOutOfRange             = "depth_out_of_range"
	CodeDuplicateInvestigationPoint = "duplicate_investigation_point"
	CodeDepthMaxMissing             = "depth_max_missing"
	// External collaborators (geodesy, elevation models, databases)
	CodeDependencyUnavailable = "dependency_unavailable"
)

// Issue represents a single finding about a dataset.
type Issue struct {
	Path    string // JSON Pointer (for example: /sections/2/main/depth_min).
	Code    string // One of the codes listed above.
	Message string
	Cause   error  // Optional: underlying error.
	Line    int    // 1-based input line (0 when unknown).
	// InputFragment is an optional snippet of the offending input.
	InputFragment string
	// Params carries structured parameters (e.g., {"depth_min":10, "depth_max_drilled":5})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. depth_out_of_range at /sections/0/main/depth
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the underlying causes to errors.Is and errors.As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// SyntaxError reports a line that cannot be tokenized. Decoding stops at the
// first one.
type SyntaxError struct {
	Line   int    // 1-based
	Offset int    // byte offset of the offending field within the line
	Raw    string // the line as read, after charset decoding
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sgfdata: syntax error on line %d: %v: %q", e.Line, e.Err, e.Raw)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Issue converts the error into the Issue model.
func (e *SyntaxError) Issue() Issue {
	return Issue{
		Path:          Root().Field("lines").Index(e.Line).Pointer(),
		Code:          CodeSyntaxError,
		Message:       e.Err.Error(),
		Cause:         e.Err,
		Line:          e.Line,
		InputFragment: e.Raw,
		Params:        map[string]any{"offset": e.Offset},
	}
}
