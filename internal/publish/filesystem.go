package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Filesystem writes objects below a root directory.
type Filesystem struct {
	root string
}

// NewFilesystem returns a store rooted at root, creating it if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "public"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, errors.FileSystemError("failed to create output directory").WithCause(err).WithContext("path", root).Build()
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

// Root returns the output directory.
func (s *Filesystem) Root() string { return s.root }

// Put writes r to {root}/{key} through a temporary file so readers never see
// a partial page.
func (s *Filesystem) Put(_ context.Context, key string, r io.Reader, _ PutOptions) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	path := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.FileSystemError("failed to create directory").WithCause(err).WithContext("path", path).Build()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".publish-*")
	if err != nil {
		return errors.FileSystemError("failed to create file").WithCause(err).WithContext("path", path).Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return errors.FileSystemError("failed to write file").WithCause(err).WithContext("path", path).Build()
	}
	if err := tmp.Close(); err != nil {
		return errors.FileSystemError("failed to write file").WithCause(err).WithContext("path", path).Build()
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.FileSystemError("failed to move file into place").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
