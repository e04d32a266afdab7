package handlers

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// IndexSource returns the content index currently being served.
type IndexSource func() *content.Index

// PageHandlers renders documentation pages on request.
type PageHandlers struct {
	renderer     *site.Renderer
	index        IndexSource
	errorAdapter *errors.HTTPErrorAdapter
}

// NewPageHandlers creates the page handlers.
func NewPageHandlers(renderer *site.Renderer, index IndexSource) *PageHandlers {
	return &PageHandlers{
		renderer:     renderer,
		index:        index,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandlePage resolves the request path to a document and renders it. Pages
// are revalidated by ETag; a matching If-None-Match skips composition and
// with it the page's post-render commands.
func (h *PageHandlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	if !allowRead(h.errorAdapter, w, r) {
		return
	}
	doc, err := h.index().ResolveURL(r.URL.Path)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	etag := site.ETag(doc, h.renderer.Settings.BuildType)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	res, err := h.renderer.Render(r.Context(), doc)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", doc.Path.Locale)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(res.HTML)
}
