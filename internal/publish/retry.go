package publish

import (
	"bytes"
	"context"
	"io"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// Retrying retries Put on storage errors. The body is buffered so every
// attempt sends the same bytes.
type Retrying struct {
	Store
	Policy retry.Policy
}

// WithRetry wraps s unless p allows no retries.
func WithRetry(s Store, p retry.Policy) Store {
	if p.MaxRetries <= 0 {
		return s
	}
	return &Retrying{Store: s, Policy: p}
}

// Put implements Store.
func (r *Retrying) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return errors.FileSystemError("failed to read object body").WithCause(err).WithContext("key", key).Build()
	}
	return r.Policy.Do(ctx, "publish "+key, isTransient, func(ctx context.Context) error {
		return r.Store.Put(ctx, key, bytes.NewReader(data), opts)
	})
}

func isTransient(err error) bool {
	return errors.HasCategory(err, errors.CategoryStorage)
}
