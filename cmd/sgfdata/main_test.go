package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/sgfdata/i18n"
	"github.com/reoring/sgfdata/sink/sqlite"
)

// run executes the CLI in an empty working directory so no stray config
// file is picked up.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SGFDATA_CONFIG", "")
	t.Cleanup(func() { i18n.SetLanguage("en") })
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func fixture(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "..", "testdata", "two_soundings.sgf"))
	require.NoError(t, err)
	return p
}

func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

const duplicates = "$\nHN=PT1,HM=7\n#\nD=1.0\n$\nHN=PT1,HM=7\n#\nD=2.0\n"

func TestConvert_ToJSON(t *testing.T) {
	in := fixture(t)
	dir := workdir(t)
	out := filepath.Join(dir, "out.json")

	_, _, err := run(t, "", "convert", in, out)
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc struct {
		Sections []struct {
			Main []map[string]any `json:"main"`
		} `json:"sections"`
	}
	require.NoError(t, gojson.Unmarshal(b, &doc))
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "PT1", doc.Sections[0].Main[0]["investigation_point"])
}

func TestConvert_StdioRoundTrip(t *testing.T) {
	workdir(t)
	src := "$\nHN=PT1,HM=7\n#\nD=1.5,K=90\n"

	stdout, _, err := run(t, src, "convert", "--input-encoding", "utf-8", "--output-encoding", "utf-8", "-", "-")
	require.NoError(t, err)
	assert.Equal(t, src, stdout)
}

func TestConvert_NormalizeAndDepthSign(t *testing.T) {
	workdir(t)
	src := "$\nHN=PT1,HM=7\n#\nD=1.5\nD=2.5,K=90\n"

	stdout, _, err := run(t, src, "convert", "--to", "json", "--normalize", "--depth-sign", "-1", "-", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"depth_max_drilled":2.5`)
	assert.Contains(t, stdout, `"depth":-2.5`)
	assert.Contains(t, stdout, `"stop_code":"stop_against_presumed_rock"`)
}

func TestConvert_MaterialFeedsNormalization(t *testing.T) {
	workdir(t)
	src := "$\nHN=PT1,HM=7\n#\nD=1.0\nD=2.0,K=granite\nD=3.0\n"

	stdout, _, err := run(t, src, "convert", "--input-encoding", "utf-8", "--to", "json",
		"--depth-to-material", "granite", "--normalize", "--validate", "-", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"stop_code":"stop_against_presumed_rock"`)
	assert.Contains(t, stdout, `"depth_bedrock":2`)
	assert.Contains(t, stdout, `"depth_max":3`)
	assert.Contains(t, stdout, `"depth":3`)
	assert.Contains(t, stdout, `"errors":0`)
}

func TestConvert_ValidateRockWithoutDepthMax(t *testing.T) {
	workdir(t)
	// A rock stop in the header but no depth rows to derive depth_max from.
	src := "$\nHN=PT1,HM=7\n#\nK=90\n"

	_, stderr, err := run(t, src, "convert", "--input-encoding", "utf-8", "--normalize", "--validate", "-", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "/sections/0/main/depth_max")
	assert.Contains(t, stderr, "stopped against rock")
}

func TestConvert_InvalidDepthSign(t *testing.T) {
	workdir(t)
	_, _, err := run(t, duplicates, "convert", "--depth-sign", "2", "-", "-")
	require.Error(t, err)
}

func TestConvert_ValidateStrict(t *testing.T) {
	workdir(t)

	_, stderr, err := run(t, duplicates, "convert", "--validate", "-", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "/sections/1/main/investigation_point")

	_, _, err = run(t, duplicates, "convert", "--validate", "--strict", "-", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 validation findings")
}

func TestConvert_SyntaxError(t *testing.T) {
	workdir(t)
	_, _, err := run(t, "$\n,HN=1\n", "convert", "--input-encoding", "utf-8", "-", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestConvert_UnknownInputEncoding(t *testing.T) {
	workdir(t)
	_, _, err := run(t, duplicates, "convert", "--input-encoding", "klingon-8", "-", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown character encoding klingon-8")

	_, _, err = run(t, duplicates, "--lang", "sv", "convert", "--input-encoding", "klingon-8", "-", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "okänd teckenkodning klingon-8")
}

func TestConvert_ToSQLite(t *testing.T) {
	in := fixture(t)
	dir := workdir(t)
	out := filepath.Join(dir, "db", "bore.db")

	_, _, err := run(t, "", "convert", "--table-prefix", "sgf_", in, out)
	require.NoError(t, err)

	db, err := sqlite.Open(out)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "sgf_main"`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestConvert_SQLiteNeedsFile(t *testing.T) {
	workdir(t)
	_, _, err := run(t, duplicates, "convert", "--to", "sqlite", "-", "-")
	require.Error(t, err)
}

func TestConvert_UnknownFormat(t *testing.T) {
	workdir(t)
	_, _, err := run(t, duplicates, "convert", "--to", "xml", "-", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestConvert_MetricsFile(t *testing.T) {
	dir := workdir(t)
	metrics := filepath.Join(dir, "sgfdata.prom")

	_, _, err := run(t, duplicates, "--metrics-file", metrics, "convert", "-", "-")
	require.NoError(t, err)

	b, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(b), "sgfdata_sections_decoded_total 2")
}

func TestBatch(t *testing.T) {
	dir := workdir(t)
	in := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(filepath.Join(in, "site"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.sgf"), []byte(duplicates), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "site", "b.SGF"), []byte("$\nHN=PT9\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("skip"), 0o644))
	out := filepath.Join(dir, "out")

	stdout, _, err := run(t, "", "batch", "--to", "json", "-p", "2", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "converted 2 of 2 files")

	for _, p := range []string{"a.json", filepath.Join("site", "b.json")} {
		_, err := os.Stat(filepath.Join(out, p))
		assert.NoError(t, err, p)
	}
	_, err = os.Stat(filepath.Join(out, "notes.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatch_ReportsFailures(t *testing.T) {
	dir := workdir(t)
	in := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(in, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "good.sgf"), []byte(duplicates), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.sgf"), []byte("$\n,HN=1\n"), 0o644))
	out := filepath.Join(dir, "out")

	_, stderr, err := run(t, "", "batch", "--input-encoding", "utf-8", in, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, stderr, "bad.sgf")
	_, err = os.Stat(filepath.Join(out, "good.sgf"))
	assert.NoError(t, err)
}

func TestBatch_RejectsDatabaseFormats(t *testing.T) {
	dir := workdir(t)
	_, _, err := run(t, "", "batch", "--to", "sqlite", dir, filepath.Join(dir, "out"))
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	in := fixture(t)
	workdir(t)

	stdout, _, err := run(t, "", "inspect", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sections:    2")

	stdout, _, err = run(t, "", "inspect", "--json", "--validate", in)
	require.NoError(t, err)
	var rep inspectReport
	require.NoError(t, gojson.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, 2, rep.Summary.Sections)
	assert.Equal(t, 4, rep.Summary.DataRows)
}

func TestInspect_FindingsInSwedish(t *testing.T) {
	workdir(t)
	stdout, _, err := run(t, duplicates, "--lang", "sv", "inspect", "--validate", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[duplicate_investigation_point]")
	assert.Contains(t, stdout, "PT1")
}

func TestTables(t *testing.T) {
	workdir(t)

	stdout, _, err := run(t, "", "tables")
	require.NoError(t, err)
	assert.Contains(t, stdout, "investigation_point")

	stdout, _, err = run(t, "", "tables", "--labels", "comments")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stop_against_presumed_rock")

	_, _, err = run(t, "", "tables", "--labels", "colors")
	require.Error(t, err)
}

func TestConfigFileAndFlags(t *testing.T) {
	dir := workdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sgfdata.yaml"), []byte("log_level: loud\n"), 0o644))

	_, _, err := run(t, "", "tables")
	require.Error(t, err, "invalid log level from the config file")

	_, _, err = run(t, "", "--log-level", "debug", "tables")
	require.NoError(t, err, "flags override the config file")
}
