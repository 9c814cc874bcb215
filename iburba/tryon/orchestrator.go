package tryon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/iburba/server/iburba/usage"
	"codeberg.org/iburba/server/internal/auth"
	"codeberg.org/iburba/server/internal/fashn"
	"codeberg.org/iburba/server/internal/imageprep"
	"codeberg.org/iburba/server/internal/logger"
	"codeberg.org/iburba/server/internal/metrics"
	"github.com/oklog/ulid/v2"
)

// drives one job from admission through polling to a terminal state
type Orchestrator struct {
	client  fashn.Client
	ledger  Ledger
	prep    Preprocessor
	metrics metrics.Recorder
	config  Config

	// suspends between polls, returns early with ctx's error
	wait func(ctx context.Context, d time.Duration) error
	now  func() time.Time
}

// creates a new orchestrator
func NewOrchestrator(client fashn.Client, ledger Ledger, prep Preprocessor, rec metrics.Recorder, config Config) *Orchestrator {
	if rec == nil {
		rec = metrics.NewNoop()
	}

	return &Orchestrator{
		client:  client,
		ledger:  ledger,
		prep:    prep,
		metrics: rec,
		config:  config,
		wait:    sleep,
		now:     time.Now,
	}
}

// runs a job for identity; failures are returned as *JobError
func (o *Orchestrator) Run(ctx context.Context, identity *auth.Identity, req Request) (*Outcome, error) {
	job := &Job{
		ID:           ulid.Make().String(),
		UserID:       identity.UserID,
		PersonImage:  req.PersonImage,
		GarmentImage: req.GarmentImage,
		Status:       StatusPending,
	}

	log := logger.FromContext(ctx).With("job_id", job.ID, "user_id", job.UserID)
	start := o.now()

	// system ceiling before the per-user ceiling
	if err := o.ledger.CheckSystemCostLimit(ctx); err != nil {
		return nil, o.reject(log, job, err)
	}

	if err := o.ledger.CheckUserLimit(ctx, identity.UserID, identity.Plan); err != nil {
		return nil, o.reject(log, job, err)
	}

	log.Info("job admitted", "state", "admitted", "plan", identity.Plan)

	plan := identity.Plan.Info()
	submit := fashn.SubmitRequest{
		PersonImage:  o.prepare(log, "person", job.PersonImage, plan.MaxHeight),
		GarmentImage: o.prepare(log, "garment", job.GarmentImage, plan.MaxHeight),
		Options:      buildOptions(plan.Mode, req),
	}

	remoteID, err := o.client.Submit(ctx, submit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, o.cancel(log, job, ctx.Err())
		}

		return nil, o.fail(log, job, fmt.Errorf("submit: %w", err))
	}

	job.RemoteID = remoteID
	log = log.With("remote_id", remoteID)
	log.Info("job submitted", "state", "submitted")

	for job.Elapsed < o.config.PollDeadline {
		status, err := o.client.Poll(ctx, job.RemoteID)
		job.Polls++

		if ctx.Err() != nil {
			return nil, o.cancel(log, job, ctx.Err())
		}

		switch {
		case err == nil:
			o.metrics.IncTryonPoll(string(status.State))
			log.Debug("job polled", "state", "polling", "remote_state", status.Raw, "elapsed", job.Elapsed)

			if status.State.IsTerminal() {
				if status.State == fashn.StateCompleted {
					return o.complete(ctx, log, job, identity, status, start)
				}
				return nil, o.fail(log, job, fmt.Errorf("%w: %s", ErrRemoteJobFailed, status.Reason))
			}
			if status.State == fashn.StateUnknown {
				log.Warn("unknown remote state", "remote_state", status.Raw)
			}
		case errors.Is(err, fashn.ErrRemoteUnavailable):
			o.metrics.IncTryonPoll("error")
			log.Warn("transient poll failure", "error", err, "elapsed", job.Elapsed)
		default:
			return nil, o.fail(log, job, fmt.Errorf("poll: %w", err))
		}

		if err := o.wait(ctx, o.config.PollInterval); err != nil {
			return nil, o.cancel(log, job, err)
		}

		job.Elapsed += o.config.PollInterval
	}

	job.Status = StatusTimedOut
	o.metrics.IncTryonJob(string(job.Status))
	log.Warn("job timed out", "state", job.Status, "polls", job.Polls, "deadline", o.config.PollDeadline)

	return nil, &JobError{
		JobID:  job.ID,
		Status: job.Status,
		Err:    fmt.Errorf("%w after %s", ErrTimeout, o.config.PollDeadline),
	}
}

func (o *Orchestrator) complete(
	ctx context.Context,
	log *slog.Logger,
	job *Job,
	identity *auth.Identity,
	status *fashn.Status,
	start time.Time,
) (*Outcome, error) {
	if len(status.Outputs) == 0 {
		return nil, o.fail(log, job, fmt.Errorf("%w: no output produced", ErrRemoteJobFailed))
	}

	// an abandoned job is never billed
	if ctx.Err() != nil {
		return nil, o.cancel(log, job, ctx.Err())
	}

	job.Status = StatusCompleted

	outcome := &Outcome{
		JobID:          job.ID,
		ResultImage:    status.Outputs[0],
		ProcessingTime: o.now().Sub(start),
		Cost:           o.config.CostPerJob,
	}

	if err := o.ledger.RecordUsage(ctx, job.UserID, o.config.CostPerJob); err != nil {
		log.Error("failed to record usage", "error", err)
	}

	if remaining, err := o.ledger.Remaining(ctx, job.UserID, identity.Plan); err != nil {
		log.Error("failed to compute remaining usage", "error", err)
	} else {
		outcome.RemainingUsage = &remaining
	}

	o.metrics.IncTryonJob(string(job.Status))
	o.metrics.ObserveTryonDuration(outcome.ProcessingTime)
	log.Info("job completed",
		"state", job.Status,
		"polls", job.Polls,
		"processing_time", outcome.ProcessingTime,
	)

	return outcome, nil
}

func (o *Orchestrator) reject(log *slog.Logger, job *Job, err error) error {
	var quotaErr *usage.QuotaError
	if !errors.As(err, &quotaErr) {
		// ledger read failure, not a quota decision
		return o.fail(log, job, fmt.Errorf("admission: %w", err))
	}

	job.Status = StatusRejected
	o.metrics.IncTryonJob(string(job.Status))
	o.metrics.IncQuotaRejection(string(quotaErr.Scope))
	log.Info("job rejected", "state", job.Status, "scope", quotaErr.Scope, "reason", err.Error())

	return &JobError{JobID: job.ID, Status: job.Status, Err: err}
}

func (o *Orchestrator) fail(log *slog.Logger, job *Job, err error) error {
	job.Status = StatusFailed
	o.metrics.IncTryonJob(string(job.Status))
	log.Warn("job failed", "state", job.Status, "polls", job.Polls, "error", err)

	return &JobError{JobID: job.ID, Status: job.Status, Err: err}
}

func (o *Orchestrator) cancel(log *slog.Logger, job *Job, cause error) error {
	job.Status = StatusCanceled
	o.metrics.IncTryonJob(string(job.Status))
	log.Info("job canceled", "state", job.Status, "polls", job.Polls)

	return &JobError{JobID: job.ID, Status: job.Status, Err: fmt.Errorf("%w: %v", ErrCanceled, cause)}
}

// falls back to the raw payload when the image can't be processed
func (o *Orchestrator) prepare(log *slog.Logger, kind, payload string, maxHeight int) string {
	if o.prep == nil {
		return imageprep.Passthrough(payload)
	}

	prepared, err := o.prep.Prepare(payload, maxHeight)
	if err != nil {
		log.Warn("image preprocessing failed, sending original", "image", kind, "error", err)
		return imageprep.Passthrough(payload)
	}

	return prepared
}

func buildOptions(planMode string, req Request) fashn.Options {
	opts := fashn.DefaultOptions()

	if planMode != "" {
		opts.Mode = planMode
	}

	if req.Mode != "" {
		opts.Mode = req.Mode
	}

	if req.Category != "" {
		opts.Category = req.Category
	}

	if req.Seed != nil {
		opts.Seed = *req.Seed
	}

	if req.NumSamples > 0 {
		opts.NumSamples = req.NumSamples
	}

	if req.SegmentationFree != nil {
		opts.SegmentationFree = req.SegmentationFree
	}

	if req.ModerationLevel != "" {
		opts.ModerationLevel = req.ModerationLevel
	}

	return opts
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
