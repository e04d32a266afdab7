package site

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/notice"
	"git.home.luguber.info/inful/docsite/internal/publish"
)

// ReportKey is the object key of the build report.
const ReportKey = "build-report.json"

// PageFailure records a page that could not be rendered.
type PageFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Report summarizes a static build.
type Report struct {
	BuildType string        `json:"build_type"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Pages     int           `json:"pages"`
	Notices   int           `json:"notices"`
	Failures  []PageFailure `json:"failures,omitempty"`
}

// Build renders every document of ix into store and writes a report next to
// the pages. Per-page content and render failures are collected and the
// build continues; configuration errors (a repository without a version
// table entry) abort it because every later page would fail the same way.
func Build(ctx context.Context, r *Renderer, ix *content.Index, store publish.Store) (*Report, error) {
	report := &Report{BuildType: string(r.Settings.BuildType), Start: time.Now()}

	for _, doc := range ix.Documents() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := r.Render(ctx, doc)
		if err != nil {
			if errors.HasCategory(err, errors.CategoryConfig) {
				return report, err
			}
			slog.Warn("Page failed to render", logfields.Path(doc.URL), logfields.Error(err))
			report.Failures = append(report.Failures, PageFailure{URL: doc.URL, Error: err.Error()})
			continue
		}
		key := publish.PageKey(doc.URL)
		if err := store.Put(ctx, key, bytes.NewReader(res.HTML), publish.PutOptions{
			ContentType: "text/html; charset=utf-8",
			Metadata:    map[string]string{"fingerprint": doc.Fingerprint},
		}); err != nil {
			return report, err
		}
		report.Pages++
		if res.Page.Notice.Kind != notice.KindNone {
			report.Notices++
		}
		slog.Debug("Published page", logfields.Path(doc.URL), logfields.File(key))
	}
	report.End = time.Now()

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return report, errors.WrapError(err, errors.CategoryInternal, "failed to encode build report").Build()
	}
	if err := store.Put(ctx, ReportKey, bytes.NewReader(raw), publish.PutOptions{ContentType: "application/json"}); err != nil {
		return report, err
	}

	slog.Info("Build finished",
		logfields.BuildType(report.BuildType),
		logfields.Count(report.Pages),
		slog.Int("notices", report.Notices),
		slog.Int("failures", len(report.Failures)),
		slog.Duration("duration", report.End.Sub(report.Start)))

	if n := len(report.Failures); n > 0 {
		return report, errors.RenderError("some pages failed to render").
			WithContext("failures", n).
			Build()
	}
	return report, nil
}
