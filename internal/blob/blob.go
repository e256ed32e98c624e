// Package blob gives the CLI one way to read inputs and write outputs on
// the local filesystem, in memory or in an S3 compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem represents the local filesystem implementation.
	DriverFilesystem Driver = "fs"
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3"
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory"
)

// Info describes a stored blob.
type Info struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the S3-like surface the CLI needs. Put overwrites.
type Store interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, r io.Reader) error
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("blob: not found")

// Location is a parsed input or output address.
type Location struct {
	Driver Driver
	// Root is the filesystem directory or the bucket name.
	Root string
	// Key is the object key below Root; empty addresses the whole Root.
	Key string
}

// String renders the location back into URI form.
func (l Location) String() string {
	switch l.Driver {
	case DriverS3:
		return "s3://" + l.Root + "/" + l.Key
	case DriverMemory:
		return "mem://" + l.Key
	}
	if l.Key == "" {
		return l.Root
	}
	return filepath.Join(l.Root, filepath.FromSlash(l.Key))
}

// IsDir reports whether the location addresses a prefix rather than one
// object.
func (l Location) IsDir() bool { return l.Key == "" || strings.HasSuffix(l.Key, "/") }

// ParseURI understands s3://bucket/key, mem://key and plain paths. A path
// that names an existing directory or ends in a separator addresses the
// whole directory.
func ParseURI(uri string) (Location, error) {
	if uri == "" {
		return Location{}, fmt.Errorf("blob: empty location")
	}
	if strings.Contains(uri, "://") {
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, fmt.Errorf("blob: parse %q: %w", uri, err)
		}
		switch u.Scheme {
		case "s3":
			if u.Host == "" {
				return Location{}, fmt.Errorf("blob: %q has no bucket", uri)
			}
			return Location{Driver: DriverS3, Root: u.Host, Key: strings.TrimPrefix(u.Path, "/")}, nil
		case "mem", "memory":
			return Location{Driver: DriverMemory, Key: strings.TrimPrefix(u.Host+u.Path, "/")}, nil
		case "file":
			uri = u.Path
		default:
			return Location{}, fmt.Errorf("blob: unsupported scheme %q", u.Scheme)
		}
	}
	if strings.HasSuffix(uri, "/") || strings.HasSuffix(uri, string(filepath.Separator)) {
		return Location{Driver: DriverFilesystem, Root: filepath.Clean(uri)}, nil
	}
	if st, err := os.Stat(uri); err == nil && st.IsDir() {
		return Location{Driver: DriverFilesystem, Root: filepath.Clean(uri)}, nil
	}
	return Location{Driver: DriverFilesystem, Root: filepath.Dir(uri), Key: filepath.Base(uri)}, nil
}

// Options configures the drivers Open can build.
type Options struct {
	S3 S3Config
	// Memory is shared by every mem:// location; Open creates one when nil.
	Memory *Memory
}

// Open returns the store for loc.
func Open(ctx context.Context, loc Location, opt Options) (Store, error) {
	switch loc.Driver {
	case DriverFilesystem:
		return NewFilesystem(loc.Root)
	case DriverS3:
		cfg := opt.S3
		cfg.Bucket = loc.Root
		return NewS3(ctx, cfg)
	case DriverMemory:
		if opt.Memory != nil {
			return opt.Memory, nil
		}
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown blob driver %s", loc.Driver)
}
