// Package metrics provides instrumentation hooks for the try-on pipeline.
package metrics

import "time"

// captures metric events for the application
type Recorder interface {
	// terminal job outcomes: completed, failed, timed_out, rejected, canceled
	IncTryonJob(status string)
	ObserveTryonDuration(duration time.Duration)

	// remote status observed on each poll tick
	IncTryonPoll(state string)

	// admission rejections by scope: system or user
	IncQuotaRejection(scope string)
}
