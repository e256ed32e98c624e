package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/metadata"
)

func TestMetrics_Observer(t *testing.T) {
	reg, err := metadata.LoadDefault()
	require.NoError(t, err)
	m := New()

	in := "$\nHN=PT1,HD=notadate\n#\nD=0.5\nD=1.0\n$\nHN=PT2\n"
	_, err = sgf.Decode(context.Background(), reg, strings.NewReader(in), sgf.DecodeOpt{Encoding: "utf-8", Observer: m})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sections))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("main", "HD")))
}

func TestMetrics_FilesAndTextfile(t *testing.T) {
	m := New()
	m.File(10*time.Millisecond, nil)
	m.File(time.Second, errors.New("boom"))
	m.Issues(sgf.Issues{{Code: sgf.CodeDepthOutOfRange}, {Code: sgf.CodeDepthOutOfRange}})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.files.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.files.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.issues.WithLabelValues(sgf.CodeDepthOutOfRange)))

	path := filepath.Join(t.TempDir(), "sgfdata.prom")
	require.NoError(t, m.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `sgfdata_files_total{result="error"} 1`)
	assert.Contains(t, string(b), "sgfdata_file_duration_seconds_count 2")
}
