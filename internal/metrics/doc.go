// Package metrics provides the observability hooks of the renderer.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so nothing needs nil checks:
//
//	shell := &shell.Shell{Recorder: metrics.NoopRecorder{}}
//
// The serve command swaps in a PrometheusRecorder and mounts HTTPHandler on
// the configured metrics path.
package metrics
