package metrics

import "time"

// implements Recorder with no-op methods
type NoopRecorder struct{}

// returns a Recorder that discards all metrics
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTryonJob(string) {}

func (n *NoopRecorder) ObserveTryonDuration(time.Duration) {}

func (n *NoopRecorder) IncTryonPoll(string) {}

func (n *NoopRecorder) IncQuotaRejection(string) {}
