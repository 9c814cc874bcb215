package tryon

import (
	"errors"
	"fmt"
)

var (
	ErrRemoteJobFailed = errors.New("remote job failed")
	ErrTimeout         = errors.New("job timed out")
	ErrCanceled        = errors.New("job canceled")
	ErrInvalidRequest  = errors.New("invalid request")
)

// terminal failure of a job; unwraps to the cause
type JobError struct {
	JobID  string
	Status Status
	Err    error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s %s: %v", e.JobID, e.Status, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}
