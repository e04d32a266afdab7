// Package errors provides the classified error type used across docsite.
//
// A ClassifiedError carries a category (config, content, render, ...), a
// severity and structured context. The HTTP and CLI adapters map categories to
// status codes and exit codes so handlers and commands never switch on error
// strings.
//
// Example usage:
//
//	err := errors.ConfigError("missing configuration entry").
//		WithContext("repository", repo).
//		Build()
package errors
