package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoded is a text view of a byte stream together with the encoding that was
// used to produce it.
type Decoded struct {
	io.Reader
	Encoding string
	// Detected is set when Encoding came from sniffing rather than the caller.
	Detected *Detection
}

// Open wraps r in a decoding reader. An empty name selects detection on the
// first SampleSize bytes with det, or Chardet when det is nil. Invalid byte
// sequences are replaced, never reported. A leading byte order mark overrides
// the chosen encoding.
func Open(r io.Reader, name string, det Detector, logger *slog.Logger) (*Decoded, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if det == nil {
		det = Chardet()
	}
	br := bufio.NewReaderSize(r, SampleSize)
	out := &Decoded{Encoding: name}
	if name == "" {
		sample, err := br.Peek(SampleSize)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, fmt.Errorf("source: sniff: %w", err)
		}
		got, err := det.Detect(sample)
		if err != nil {
			// Empty or binary-looking samples: nothing better than the fallback.
			logger.Debug("charset detection failed", "detector", det.Name(), "err", err)
		}
		out.Detected = &got
		out.Encoding = Choose(got)
		logger.Debug("charset detected", "detector", det.Name(), "charset", got.Charset, "confidence", got.Confidence, "using", out.Encoding)
	}
	enc, err := Lookup(out.Encoding)
	if err != nil {
		if out.Detected == nil {
			return nil, err
		}
		logger.Debug("detected charset not supported, using fallback", "charset", out.Encoding)
		out.Encoding = Fallback
		enc, _ = Lookup(Fallback)
	}
	out.Reader = transform.NewReader(br, unicode.BOMOverride(enc.NewDecoder()))
	return out, nil
}

// LineReader yields lines with trailing CR/LF removed. LF, CRLF and lone CR
// all terminate a line.
type LineReader struct {
	sc   *bufio.Scanner
	line int
}

const maxLine = 16 << 20

// NewLineReader returns a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	sc.Split(scanLines)
	return &LineReader{sc: sc}
}

// Next returns the next line, or io.EOF after the last one.
func (l *LineReader) Next() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", fmt.Errorf("source: line %d: %w", l.line+1, err)
		}
		return "", io.EOF
	}
	l.line++
	return l.sc.Text(), nil
}

// Line is the 1-based number of the line last returned by Next.
func (l *LineReader) Line() int { return l.line }

func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// CR: swallow a following LF; need one more byte to know.
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
