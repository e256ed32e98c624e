package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		in   string
		want Location
	}{
		{"s3://bucket/in/a.sgf", Location{Driver: DriverS3, Root: "bucket", Key: "in/a.sgf"}},
		{"s3://bucket", Location{Driver: DriverS3, Root: "bucket"}},
		{"mem://out/x.json", Location{Driver: DriverMemory, Key: "out/x.json"}},
		{"data/a.sgf", Location{Driver: DriverFilesystem, Root: "data", Key: "a.sgf"}},
		{"out/", Location{Driver: DriverFilesystem, Root: "out"}},
		{dir, Location{Driver: DriverFilesystem, Root: dir}},
		{"file://" + filepath.Join(dir, "b.sgf"), Location{Driver: DriverFilesystem, Root: dir, Key: "b.sgf"}},
	}
	for _, c := range cases {
		got, err := ParseURI(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
	for _, bad := range []string{"", "ftp://x/y", "s3:///key"} {
		_, err := ParseURI(bad)
		assert.Error(t, err, bad)
	}
	assert.True(t, Location{Driver: DriverS3, Root: "b", Key: "p/"}.IsDir())
	assert.Equal(t, "s3://b/k", Location{Driver: DriverS3, Root: "b", Key: "k"}.String())
}

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "in/a.sgf", strings.NewReader("$\nHA=1\n")))
	require.NoError(t, s.Put(ctx, "in/b.sgf", strings.NewReader("old")))
	require.NoError(t, s.Put(ctx, "in/b.sgf", strings.NewReader("$\n")))
	require.NoError(t, s.Put(ctx, "other.txt", strings.NewReader("x")))

	rc, err := s.Get(ctx, "in/b.sgf")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "$\n", string(b), "put overwrites")

	infos, err := s.List(ctx, "in/")
	require.NoError(t, err)
	var keys []string
	for _, i := range infos {
		keys = append(keys, i.Key)
	}
	assert.Equal(t, []string{"in/a.sgf", "in/b.sgf"}, keys)
	assert.Equal(t, int64(7), infos[0].Size)

	_, err = s.Get(ctx, "missing.sgf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystem(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	s, err := NewFilesystem(root)
	require.NoError(t, err)
	exercise(t, s)

	_, err = os.Stat(filepath.Join(root, "in", "a.sgf"))
	assert.NoError(t, err)
	for _, bad := range []string{"", "/etc/passwd", "../x", "a/../../x"} {
		assert.Error(t, s.Put(context.Background(), bad, strings.NewReader("")), bad)
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestOpen(t *testing.T) {
	mem := NewMemory()
	s, err := Open(context.Background(), Location{Driver: DriverMemory, Key: "x"}, Options{Memory: mem})
	require.NoError(t, err)
	assert.Same(t, mem, s)

	s, err = Open(context.Background(), Location{Driver: DriverFilesystem, Root: t.TempDir()}, Options{})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	_, err = Open(context.Background(), Location{Driver: "ftp"}, Options{})
	assert.Error(t, err)
}

// fakeS3 answers the handful of S3 calls the store makes.
type fakeS3 struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := func(code int, body string) *http.Response {
		return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body)),
			Header: http.Header{"Content-Type": {"application/xml"}}, Request: req}
	}
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	switch {
	case req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2":
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objs {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objs[k]))
		}
		b.WriteString("</ListBucketResult>")
		return resp(http.StatusOK, b.String()), nil
	case req.Method == http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := unchunk(body); ok {
			body = dec
		}
		f.objs[key] = body
		return resp(http.StatusOK, ""), nil
	case req.Method == http.MethodGet:
		b, ok := f.objs[key]
		if !ok {
			return resp(http.StatusNotFound, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`), nil
		}
		r := resp(http.StatusOK, "")
		r.Body = io.NopCloser(bytes.NewReader(b))
		r.Header.Set("Content-Length", strconv.Itoa(len(b)))
		return r, nil
	}
	return resp(http.StatusNotImplemented, ""), nil
}

// unchunk decodes a single-chunk aws-chunked payload: <hex>\r\n<body>\r\n0\r\n...
func unchunk(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	size, err := strconv.ParseInt(strings.SplitN(parts[0], ";", 2)[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size || !strings.HasPrefix(parts[2], "0") {
		return nil, false
	}
	return []byte(parts[1]), true
}

func TestS3(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	s, err := NewS3(context.Background(), S3Config{
		Bucket:          "bores",
		Endpoint:        "https://s3.test.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		HTTPClient:      &http.Client{Transport: &fakeS3{objs: map[string][]byte{}}},
	})
	require.NoError(t, err)
	assert.Equal(t, DriverS3, s.Driver())
	exercise(t, s)
}

func TestS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}
