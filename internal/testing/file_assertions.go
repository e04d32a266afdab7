package testing

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FileAssertions asserts on the files a build wrote below a directory.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists validates that a file exists
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	assert.FileExists(fa.t, filepath.Join(fa.baseDir, filepath.FromSlash(relativePath)))
	return fa
}

// AssertFileNotExists validates that a file does not exist
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	assert.NoFileExists(fa.t, filepath.Join(fa.baseDir, filepath.FromSlash(relativePath)))
	return fa
}

// AssertFileContains validates that a file contains every fragment.
func (fa *FileAssertions) AssertFileContains(relativePath string, fragments ...string) *FileAssertions {
	fa.t.Helper()
	content := fa.GetFileContent(relativePath)
	for _, f := range fragments {
		assert.Contains(fa.t, content, f, "file %s", relativePath)
	}
	return fa
}

// AssertFileNotContains validates that a file contains none of the fragments.
func (fa *FileAssertions) AssertFileNotContains(relativePath string, fragments ...string) *FileAssertions {
	fa.t.Helper()
	content := fa.GetFileContent(relativePath)
	for _, f := range fragments {
		assert.NotContains(fa.t, content, f, "file %s", relativePath)
	}
	return fa
}

// CountFiles counts regular files below relativePath with the given
// extension ("" counts every file).
func (fa *FileAssertions) CountFiles(relativePath, ext string) int {
	fa.t.Helper()
	n := 0
	root := filepath.Join(fa.baseDir, filepath.FromSlash(relativePath))
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (ext == "" || filepath.Ext(path) == ext) {
			n++
		}
		return nil
	})
	if err != nil {
		fa.t.Errorf("Failed to walk %s: %v", root, err)
	}
	return n
}

// GetFileContent returns file content as a string; a missing file fails the test.
func (fa *FileAssertions) GetFileContent(relativePath string) string {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, filepath.FromSlash(relativePath))
	b, err := os.ReadFile(filepath.Clean(fullPath))
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", fullPath, err)
		return ""
	}
	return string(b)
}
