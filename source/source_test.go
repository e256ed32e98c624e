package source

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

type fixedDetector Detection

func (d fixedDetector) Detect([]byte) (Detection, error) { return Detection(d), nil }
func (fixedDetector) Name() string                       { return "fixed" }

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"latin-1", "Latin1", "ISO-8859-1", "iso_8859_1"} {
		e, err := Lookup(name)
		require.NoError(t, err, name)
		require.Equal(t, charmap.ISO8859_1, e, name)
	}
	e, err := Lookup("windows-1252")
	require.NoError(t, err)
	require.Equal(t, charmap.Windows1252, e)

	_, err = Lookup("no-such-charset")
	require.True(t, errors.Is(err, ErrUnknownEncoding))
}

func TestChoose_Threshold(t *testing.T) {
	require.Equal(t, Fallback, Choose(Detection{Charset: "UTF-8", Confidence: 0.5}))
	require.Equal(t, Fallback, Choose(Detection{}))
	require.Equal(t, "UTF-8", Choose(Detection{Charset: "UTF-8", Confidence: 0.85}))
}

func TestOpen_LowConfidenceFallsBackToLatin1(t *testing.T) {
	// 0xE5 is "å" in Latin-1 and invalid on its own in UTF-8.
	d, err := Open(bytes.NewReader([]byte("HB=Sk\xe5ne\n")), "", fixedDetector{Charset: "UTF-8", Confidence: 0.2}, nil)
	require.NoError(t, err)
	require.Equal(t, Fallback, d.Encoding)
	require.NotNil(t, d.Detected)
	require.Equal(t, "HB=Skåne\n", readAll(t, d))
}

func TestOpen_UnsupportedDetectionFallsBack(t *testing.T) {
	d, err := Open(strings.NewReader("HA=1\n"), "", fixedDetector{Charset: "x-unheard-of", Confidence: 1}, nil)
	require.NoError(t, err)
	require.Equal(t, Fallback, d.Encoding)
}

func TestOpen_ExplicitEncoding(t *testing.T) {
	d, err := Open(strings.NewReader("HB=Skåne\n"), "utf-8", nil, nil)
	require.NoError(t, err)
	require.Nil(t, d.Detected)
	require.Equal(t, "HB=Skåne\n", readAll(t, d))

	_, err = Open(strings.NewReader(""), "bogus", nil, nil)
	require.Error(t, err)
}

func TestOpen_InvalidBytesReplaced(t *testing.T) {
	d, err := Open(bytes.NewReader([]byte("HA=\xff\xfe1\n")), "utf-8", nil, nil)
	require.NoError(t, err)
	require.Contains(t, readAll(t, d), "�")
}

func TestLineReader_Terminators(t *testing.T) {
	lr := NewLineReader(strings.NewReader("$\r\nHA=1\rHB=2\n\n#\nD=1"))
	var got []string
	for {
		s, err := lr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, s)
	}
	require.Equal(t, []string{"$", "HA=1", "HB=2", "", "#", "D=1"}, got)
	require.Equal(t, 6, lr.Line())
}

func TestWriter_DropsUnencodable(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "latin-1")
	require.NoError(t, err)
	_, err = io.WriteString(w, "HB=Skåne ☃ 東\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, []byte("HB=Sk\xe5ne  \n"), buf.Bytes())
}
