package sgfdata

import (
	"log/slog"

	"github.com/reoring/sgfdata/metadata"
	"github.com/reoring/sgfdata/source"
)

// Observer receives decode events. Implementations must be safe for
// concurrent use when a Decoder is shared between goroutines.
type Observer interface {
	SectionDecoded(index int, s *Section)
	CoercionFallback(kind metadata.BlockKind, code, raw string, err error)
}

// DecodeOpt bundles decoding options. When several are passed the last one
// wins.
type DecodeOpt struct {
	// Encoding names the input character set. Empty selects detection.
	Encoding string
	// Detector sniffs the character set when Encoding is empty. Defaults to
	// source.Chardet.
	Detector source.Detector
	Logger   *slog.Logger
	Observer Observer
}

// EncodeOpt bundles encoding options. When several are passed the last one
// wins.
type EncodeOpt struct {
	// Encoding names the output character set; empty means Latin-1.
	// Characters the target cannot represent are dropped.
	Encoding string
	// CRLF selects "\r\n" line terminators.
	CRLF   bool
	Logger *slog.Logger
}

func lastDecodeOpt(opts []DecodeOpt) DecodeOpt {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Detector == nil {
		opt.Detector = source.Chardet()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return opt
}

func lastEncodeOpt(opts []EncodeOpt) EncodeOpt {
	var opt EncodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Encoding == "" {
		opt.Encoding = "latin-1"
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return opt
}
