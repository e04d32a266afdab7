// Package contributors counts the distinct authors of each document and
// keeps the counts in a store. Rendering only ever submits requests; the
// counting happens on a background worker.
package contributors

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/content"
)

var (
	// ErrQueueFull is returned by Service.Submit when the request was dropped.
	ErrQueueFull = stderrors.New("contributor queue is full")
	// ErrNotRunning is returned by Service.Submit before Start or after Stop.
	ErrNotRunning = stderrors.New("contributor service is not running")
	// ErrNoRecord is wrapped by Store.Get when nothing has been counted yet.
	ErrNoRecord = stderrors.New("no contributor record")
)

// Request asks for the contributor count of one document file.
type Request struct {
	ID       string             `json:"id"`
	Path     content.PathConfig `json:"path"`
	FilePath string             `json:"file_path"`
}

// NewRequest returns a request with a fresh id.
func NewRequest(pc content.PathConfig, filePath string) Request {
	return Request{ID: uuid.NewString(), Path: pc, FilePath: filePath}
}

// Key identifies the document a request is about, ignoring its id.
type Key struct {
	Repo     string `json:"repo"`
	Version  string `json:"version"`
	Locale   string `json:"locale"`
	FilePath string `json:"file_path"`
}

// Key returns the document key of r.
func (r Request) Key() Key {
	return Key{Repo: r.Path.Repo, Version: r.Path.Version, Locale: r.Path.Locale, FilePath: r.FilePath}
}

func pathOf(k Key) content.PathConfig {
	return content.PathConfig{Repo: k.Repo, Version: k.Version, Locale: k.Locale}
}

// Record is a stored contributor count.
type Record struct {
	Key
	Count     int       `json:"count"`
	Authors   []string  `json:"authors,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sink accepts contributor requests without waiting for the count.
type Sink interface {
	Submit(ctx context.Context, req Request) error
}

// Counter counts the distinct authors of a document.
type Counter interface {
	Count(ctx context.Context, req Request) (Result, error)
}

// Result is what a Counter found.
type Result struct {
	Authors []string
}

// Store persists contributor records.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, key Key) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Close() error
}
