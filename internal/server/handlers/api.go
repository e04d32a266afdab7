package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docsite/internal/compose"
	"git.home.luguber.info/inful/docsite/internal/contributors"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/notice"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// RecordReader reads stored contributor counts.
type RecordReader interface {
	Get(ctx context.Context, key contributors.Key) (contributors.Record, error)
}

// APIHandlers contains the JSON API handlers.
type APIHandlers struct {
	renderer *site.Renderer
	index    IndexSource
	// records is nil when contributor counting is disabled.
	records      RecordReader
	errorAdapter *errors.HTTPErrorAdapter
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(renderer *site.Renderer, index IndexSource, records RecordReader) *APIHandlers {
	return &APIHandlers{
		renderer:     renderer,
		index:        index,
		records:      records,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleContributors serves
// `/api/contributors?repo=tidb&version=v7.1&locale=en&path=overview.md`.
// locale defaults to the site's default locale.
func (h *APIHandlers) HandleContributors(w http.ResponseWriter, r *http.Request) {
	if !allowRead(h.errorAdapter, w, r) {
		return
	}
	if h.records == nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("contributor counting is disabled").Build())
		return
	}
	q := r.URL.Query()
	key := contributors.Key{
		Repo:     q.Get("repo"),
		Version:  q.Get("version"),
		Locale:   q.Get("locale"),
		FilePath: q.Get("path"),
	}
	if key.Locale == "" {
		key.Locale = h.renderer.Settings.DefaultLocale
	}
	if key.Repo == "" || key.FilePath == "" {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("repo and path are required").
			WithContext("repo", key.Repo).
			WithContext("path", key.FilePath).
			Build())
		return
	}

	rec, err := h.records.Get(r.Context(), key)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	resp := responses.ContributorsResponse{
		Repo:      rec.Repo,
		Version:   rec.Version,
		Locale:    rec.Locale,
		FilePath:  rec.FilePath,
		Count:     rec.Count,
		Authors:   rec.Authors,
		UpdatedAt: rec.UpdatedAt,
	}
	if err := writeJSON(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to write contributors response").Build())
	}
}

// HandleNotice reports the notice the page at `?url=` carries without
// rendering it.
func (h *APIHandlers) HandleNotice(w http.ResponseWriter, r *http.Request) {
	if !allowRead(h.errorAdapter, w, r) {
		return
	}
	u := r.URL.Query().Get("url")
	if u == "" {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("url is required").Build())
		return
	}
	doc, err := h.index().ResolveURL(u)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	composer := h.renderer.Composer
	resp := responses.NoticeResponse{
		URL:      doc.URL,
		Kind:     notice.KindNone.String(),
		Repo:     doc.Path.Repo,
		Version:  doc.Path.Version,
		PageType: string(composer.Classifier.Classify(doc.Path.Locale, doc.URL)),
	}
	if h.renderer.Settings.BuildType != compose.BuildArchive {
		d, err := notice.Select(composer.Versions, notice.Request{
			Repo:     doc.Path.Repo,
			Version:  doc.Path.Version,
			Name:     doc.Name,
			AvailIn:  doc.AvailIn,
			Language: doc.Path.Locale,
		})
		if err != nil {
			h.errorAdapter.WriteErrorResponse(w, r, err)
			return
		}
		resp.Kind = d.Kind.String()
		resp.StableVersion = d.StableVersion
		resp.TargetLink = d.TargetLink
	}
	if err := writeJSON(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to write notice response").Build())
	}
}
