package sgfdata

import (
	"strconv"

	"github.com/reoring/sgfdata/i18n"
)

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p PathRef, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}

// FilterIssues returns the issues carrying code.
func FilterIssues(iss Issues, code string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Code == code {
			out = append(out, it)
		}
	}
	return out
}

// Localized renders the issue through the current i18n translator, with
// the issue parameters and line number available as placeholders.
func (i Issue) Localized() string {
	data := i18n.Params(i.Params)
	if i.Line > 0 {
		if _, ok := data["line"]; !ok {
			data["line"] = strconv.Itoa(i.Line)
		}
	}
	return i18n.T(i.Code, data)
}
