// Package handlers contains the HTTP handlers of the docsite server.
//
// This package provides handlers for:
//   - Documentation pages (rendered per request, with ETag revalidation)
//   - The contributor count and notice APIs
//   - Health checks
//
// Errors are classified with the foundation/errors package and written by
// its HTTPErrorAdapter; JSON bodies are the server/responses types.
package handlers
