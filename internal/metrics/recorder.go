package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultAccepted ResultLabel = "accepted"
	ResultDropped  ResultLabel = "dropped"
)

// ResultOf maps an error onto success or failed.
func ResultOf(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}

// Recorder defines observability hooks for rendering, post-render commands,
// the contributor worker and the HTTP surface.
type Recorder interface {
	ObserveRender(pageType, notice string, d time.Duration)
	IncCommand(command string, result ResultLabel)
	IncContributorRequest(result ResultLabel)
	ObserveContributorCount(d time.Duration, result ResultLabel)
	ObserveHTTPRequest(method string, status int, d time.Duration)
	SetDocuments(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are disabled).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(string, string, time.Duration)        {}
func (NoopRecorder) IncCommand(string, ResultLabel)                     {}
func (NoopRecorder) IncContributorRequest(ResultLabel)                  {}
func (NoopRecorder) ObserveContributorCount(time.Duration, ResultLabel) {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration)      {}
func (NoopRecorder) SetDocuments(int)                                   {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
