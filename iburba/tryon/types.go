package tryon

import (
	"context"
	"time"

	"codeberg.org/iburba/server/iburba/accounts"
)

// lifecycle status of a job
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	StatusRejected  Status = "rejected"
	StatusCanceled  Status = "canceled"
)

// poll loop and billing settings
type Config struct {
	PollInterval time.Duration
	PollDeadline time.Duration
	CostPerJob   float64
}

// one try-on submission; zero option fields keep the defaults
type Request struct {
	PersonImage      string
	GarmentImage     string
	Category         string
	Mode             string
	Seed             *int
	NumSamples       int
	SegmentationFree *bool
	ModerationLevel  string
}

// ephemeral state of a single run, never persisted
type Job struct {
	ID           string
	UserID       string
	PersonImage  string
	GarmentImage string
	RemoteID     string
	Elapsed      time.Duration // logical: polls x interval
	Polls        int
	Status       Status
}

// result of a completed job
type Outcome struct {
	JobID          string
	ResultImage    string
	ProcessingTime time.Duration
	Cost           float64
	RemainingUsage *int
}

// admission and billing operations the orchestrator needs
type Ledger interface {
	CheckSystemCostLimit(ctx context.Context) error
	CheckUserLimit(ctx context.Context, userID string, plan accounts.Plan) error
	RecordUsage(ctx context.Context, userID string, cost float64) error
	Remaining(ctx context.Context, userID string, plan accounts.Plan) (int, error)
}

// normalizes an image payload into a data URL no taller than maxHeight
type Preprocessor interface {
	Prepare(payload string, maxHeight int) (string, error)
}

// response of the inbound try-on operation
type Result struct {
	Success        bool    `json:"success"`
	JobID          string  `json:"job_id,omitempty"`
	ResultImage    string  `json:"result_image,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
	Cost           float64 `json:"cost,omitempty"`
	RemainingUsage *int    `json:"remaining_usage,omitempty"`
	ErrorCode      string  `json:"error_code,omitempty"`
	Error          string  `json:"error,omitempty"`
}
