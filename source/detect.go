// Package source turns raw SGF bytes into decoded text lines and back.
//
// Field equipment writes files in whatever 8-bit code page the vendor chose,
// so input is sniffed before decoding unless the caller names an encoding.
package source

import "github.com/saintfish/chardet"

const (
	// SampleSize is the number of leading bytes inspected by detection.
	SampleSize = 4096
	// MinConfidence is the detection confidence below which Latin-1 is assumed.
	MinConfidence = 0.85
	// Fallback is the encoding used for low-confidence or unknown detections.
	Fallback = "latin-1"
)

// Detection is the outcome of sniffing a sample.
type Detection struct {
	Charset    string
	Confidence float64 // 0..1
}

// Detector guesses the character set of a byte sample.
type Detector interface {
	Detect(sample []byte) (Detection, error)
	Name() string
}

// Chardet returns the detector backed by saintfish/chardet.
func Chardet() Detector { return chardetDetector{} }

type chardetDetector struct{}

func (chardetDetector) Name() string { return "chardet" }

func (chardetDetector) Detect(sample []byte) (Detection, error) {
	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Detection{}, err
	}
	return Detection{Charset: res.Charset, Confidence: float64(res.Confidence) / 100}, nil
}

// Choose applies the confidence threshold to a detection and returns the
// encoding name to decode with.
func Choose(d Detection) string {
	if d.Charset == "" || d.Confidence < MinConfidence {
		return Fallback
	}
	return d.Charset
}
