// Package testing builds throwaway documentation sites on disk and asserts on
// the files a build leaves behind.
package testing

const (
	testDirPermissions  = 0o750
	testFilePermissions = 0o600
)
