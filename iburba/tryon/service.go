package tryon

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"codeberg.org/iburba/server/iburba/usage"
	"codeberg.org/iburba/server/internal/auth"
	apierrors "codeberg.org/iburba/server/internal/errors"
	"codeberg.org/iburba/server/internal/fashn"
	"codeberg.org/iburba/server/internal/logger"
)

// inbound try-on operation: authenticate once, then run the job
type Service struct {
	gate         auth.Resolver
	orchestrator *Orchestrator
}

// creates a new try-on service
func NewService(gate auth.Resolver, orchestrator *Orchestrator) *Service {
	return &Service{gate: gate, orchestrator: orchestrator}
}

// never returns an error; every failure is described by the result
func (s *Service) SubmitTryon(ctx context.Context, credential string, req Request) *Result {
	identity, err := s.gate.Resolve(ctx, credential)
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			logger.FromContext(ctx).Error("failed to resolve credential", "error", err)
		}

		return failure("", err)
	}

	if strings.TrimSpace(req.PersonImage) == "" || strings.TrimSpace(req.GarmentImage) == "" {
		return failure("", fmt.Errorf("%w: person_image and garment_image are required", ErrInvalidRequest))
	}

	outcome, err := s.orchestrator.Run(ctx, identity, req)
	if err != nil {
		var jobErr *JobError
		jobID := ""
		if errors.As(err, &jobErr) {
			jobID = jobErr.JobID
		}

		return failure(jobID, err)
	}

	return &Result{
		Success:        true,
		JobID:          outcome.JobID,
		ResultImage:    outcome.ResultImage,
		ProcessingTime: math.Round(outcome.ProcessingTime.Seconds()*10) / 10,
		Cost:           outcome.Cost,
		RemainingUsage: outcome.RemainingUsage,
	}
}

func failure(jobID string, err error) *Result {
	code, message := describe(err)

	return &Result{
		Success:   false,
		JobID:     jobID,
		ErrorCode: code,
		Error:     message,
	}
}

// maps an error to a machine-checkable code and a user-facing message
func describe(err error) (string, string) {
	var quotaErr *usage.QuotaError

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return apierrors.CodeUnauthenticated, "authentication required"
	case errors.As(err, &quotaErr):
		if quotaErr.Scope == usage.ScopeSystem {
			return apierrors.CodeQuotaExceeded, "service daily capacity reached, please try again tomorrow"
		}

		return apierrors.CodeQuotaExceeded, quotaErr.Error()
	case errors.Is(err, ErrInvalidRequest):
		return apierrors.CodeValidationError, strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": ")
	case errors.Is(err, ErrCanceled):
		return apierrors.CodeCanceled, "request canceled"
	case errors.Is(err, ErrTimeout):
		return apierrors.CodeTimeout, cause(err).Error()
	case errors.Is(err, ErrRemoteJobFailed):
		return apierrors.CodeRemoteJobFailed, remoteReason(err)
	case errors.Is(err, fashn.ErrRemoteUnavailable):
		return apierrors.CodeRemoteUnavailable, "try-on service is unavailable, please try again later"
	case errors.Is(err, fashn.ErrRemoteProtocol):
		return apierrors.CodeRemoteProtocolError, "try-on service returned an unexpected response"
	default:
		return apierrors.CodeServerError, apierrors.Sanitize(err)
	}
}

// strips the job wrapper
func cause(err error) error {
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		return jobErr.Err
	}

	return err
}

// extracts the reason following the sentinel in a remote failure
func remoteReason(err error) string {
	msg := err.Error()
	marker := ErrRemoteJobFailed.Error() + ": "

	if i := strings.Index(msg, marker); i >= 0 {
		return "try-on failed: " + msg[i+len(marker):]
	}

	return "try-on failed"
}
