package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepo       = "repository"
	KeyVersion    = "version"
	KeyLocale     = "locale"
	KeyPage       = "page"
	KeyPageType   = "page_type"
	KeyNotice     = "notice"
	KeyBuildType  = "build_type"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyRequestID  = "request_id"
	KeyCommand    = "command"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Locale(l string) slog.Attr       { return slog.String(KeyLocale, l) }
func Page(name string) slog.Attr      { return slog.String(KeyPage, name) }
func PageType(t string) slog.Attr     { return slog.String(KeyPageType, t) }
func Notice(kind string) slog.Attr    { return slog.String(KeyNotice, kind) }
func BuildType(b string) slog.Attr    { return slog.String(KeyBuildType, b) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func Command(name string) slog.Attr   { return slog.String(KeyCommand, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
