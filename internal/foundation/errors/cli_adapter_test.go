package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	assert.Equal(t, 0, a.ExitCodeFor(nil))
	assert.Equal(t, 1, a.ExitCodeFor(fmt.Errorf("plain")))
	assert.Equal(t, 2, a.ExitCodeFor(ValidationError("check failed").Build()))
	assert.Equal(t, 7, a.ExitCodeFor(ConfigError("bad config").Build()))
	assert.Equal(t, 8, a.ExitCodeFor(StorageError("s3").Build()))
	assert.Equal(t, 11, a.ExitCodeFor(RenderError("render").Build()))
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)
	err := WrapError(fmt.Errorf("permission denied"), CategoryFileSystem, "write page").Build()

	assert.Equal(t, "Error: write page (use -v for details)", quiet.FormatError(err))
	assert.Equal(t, "Error: [filesystem:error] write page: permission denied", verbose.FormatError(err))
	assert.Equal(t, "Error: plain", quiet.FormatError(fmt.Errorf("plain")))
	assert.Equal(t, "", quiet.FormatError(nil))
}
