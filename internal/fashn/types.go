package fashn

import (
	"context"
	"errors"
)

var (
	// network failure, non-2xx submit, transient poll failure or per-call timeout
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	// response body could not be understood
	ErrRemoteProtocol = errors.New("remote protocol error")
)

// two-call protocol over the remote try-on service
type Client interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	Poll(ctx context.Context, remoteID string) (*Status, error)
}

type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateUnknown    State = "unknown"
)

// reports whether no further polling should happen
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// typed view of a remote job status
type Status struct {
	State   State
	Outputs []string // set when completed
	Reason  string   // set when failed
	Raw     string   // status string as reported by the remote
}

// generation options sent with every submission
type Options struct {
	Category         string
	Mode             string
	Seed             int
	NumSamples       int
	SegmentationFree *bool
	ModerationLevel  string
}

// person and garment images as data URLs
type SubmitRequest struct {
	PersonImage  string
	GarmentImage string
	Options      Options
}

type runRequest struct {
	ModelImage       string `json:"model_image"`
	GarmentImage     string `json:"garment_image"`
	Category         string `json:"category"`
	Mode             string `json:"mode"`
	Seed             int    `json:"seed"`
	NumSamples       int    `json:"num_samples"`
	SegmentationFree *bool  `json:"segmentation_free,omitempty"`
	ModerationLevel  string `json:"moderation_level,omitempty"`
}

type runResponse struct {
	ID string `json:"id"`
}

type statusResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	// a plain string or an object with name and message
	Error rawError `json:"error"`
}
