// Package publish writes built pages to an output store: a local
// directory, an S3 compatible bucket or process memory.
package publish

import (
	"context"
	"io"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// Driver identifies a store backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// PutOptions specifies optional object attributes.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Store receives published objects. Put overwrites existing keys so builds
// can be re-run into the same output.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) error
	Driver() Driver
}

// Config selects and configures a backend.
type Config struct {
	Driver    Driver
	Directory string
	S3        S3Config
	// Retry applies to storage errors of remote backends.
	Retry retry.Policy
}

// Open constructs the configured store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.Directory)
	case DriverS3:
		s, err := NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return WithRetry(s, cfg.Retry), nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, errors.ConfigError("unknown output driver").WithContext("driver", string(cfg.Driver)).Build()
	}
}

// PageKey maps a page URL onto an object key: "/tidb/stable/overview"
// becomes "tidb/stable/overview/index.html" and "/" becomes "index.html".
func PageKey(pageURL string) string {
	trimmed := strings.Trim(pageURL, "/")
	if trimmed == "" {
		return "index.html"
	}
	return trimmed + "/index.html"
}

// sanitizeKey rejects keys that could escape the store root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.ValidationError("empty key").Build()
	}
	if strings.HasPrefix(key, "/") {
		return "", errors.ValidationError("invalid absolute key").WithContext("key", key).Build()
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", errors.ValidationError("invalid key traversal").WithContext("key", key).Build()
		}
	}
	return key, nil
}
