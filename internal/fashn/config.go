package fashn

import "time"

const (
	defaultBaseURL           = "https://api.fashn.ai/v1"
	defaultSubmitTimeout     = 30 * time.Second
	defaultPollTimeout       = 10 * time.Second
	defaultRequestsPerSecond = 10
)

type Config struct {
	APIKey            string
	BaseURL           string
	SubmitTimeout     time.Duration
	PollTimeout       time.Duration
	RequestsPerSecond float64
}

// fills zero values with defaults
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}

	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = defaultSubmitTimeout
	}

	if c.PollTimeout <= 0 {
		c.PollTimeout = defaultPollTimeout
	}

	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = defaultRequestsPerSecond
	}

	return c
}

// options used when a request doesn't override them
func DefaultOptions() Options {
	segmentationFree := true

	return Options{
		Category:         "auto",
		Mode:             "balanced",
		Seed:             42,
		NumSamples:       1,
		SegmentationFree: &segmentationFree,
		ModerationLevel:  "permissive",
	}
}
