package fashn

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// demo jobs that are never polled to completion are dropped after this long
const demoJobTTL = 10 * time.Minute

// sample outputs returned by NewDemoClient
var demoOutputs = []string{
	"https://images.unsplash.com/photo-1434389677669-e08b4cac3105?w=600&h=800&fit=crop&crop=top",
	"https://images.unsplash.com/photo-1529139574466-a303027c1d8b?w=600&h=800&fit=crop&crop=top",
	"https://images.unsplash.com/photo-1485230895905-ec40ba36b9bc?w=600&h=800&fit=crop&crop=top",
}

// one scripted poll response
type StubStep struct {
	Status *Status
	Err    error
}

// Client that replays a scripted poll sequence, the last step repeats once the script runs out
type StubClient struct {
	mu sync.Mutex

	SubmitErr error
	steps     []StubStep

	submits []SubmitRequest
	polls   int
	nextID  int
}

// creates a stub that answers polls with steps in order
func NewStubClient(steps ...StubStep) *StubClient {
	return &StubClient{steps: steps}
}

func (s *StubClient) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.submits = append(s.submits, req)

	if s.SubmitErr != nil {
		return "", s.SubmitErr
	}

	s.nextID++
	return fmt.Sprintf("stub-%d", s.nextID), nil
}

func (s *StubClient) Poll(ctx context.Context, _ string) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.steps) == 0 {
		return &Status{State: StateProcessing, Raw: "processing"}, nil
	}

	step := s.steps[min(s.polls, len(s.steps)-1)]
	s.polls++

	if step.Err != nil {
		return nil, step.Err
	}

	copied := *step.Status
	return &copied, nil
}

// submissions seen so far
func (s *StubClient) Submits() []SubmitRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SubmitRequest(nil), s.submits...)
}

// number of Poll calls seen
func (s *StubClient) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.polls
}

// helpers for building scripts
func Queued() StubStep {
	return StubStep{Status: &Status{State: StateQueued, Raw: "in_queue"}}
}

func Processing() StubStep {
	return StubStep{Status: &Status{State: StateProcessing, Raw: "processing"}}
}

func Unknown(raw string) StubStep {
	return StubStep{Status: &Status{State: StateUnknown, Raw: raw}}
}

func Completed(outputs ...string) StubStep {
	return StubStep{Status: &Status{State: StateCompleted, Outputs: outputs, Raw: "completed"}}
}

func Failed(reason string) StubStep {
	return StubStep{Status: &Status{State: StateFailed, Reason: reason, Raw: "failed"}}
}

func Transient() StubStep {
	return StubStep{Err: fmt.Errorf("%w: stubbed outage", ErrRemoteUnavailable)}
}

type demoJob struct {
	polls     int
	submitted time.Time
}

// Client for FASHN_MODE=stub, every job completes on its third poll
type DemoClient struct {
	mu    sync.Mutex
	jobs  map[string]*demoJob
	count int
	now   func() time.Time
}

// creates a stub for local runs: queued, processing, then a sample image
func NewDemoClient() *DemoClient {
	return &DemoClient{
		jobs: make(map[string]*demoJob),
		now:  time.Now,
	}
}

func (d *DemoClient) Submit(ctx context.Context, _ SubmitRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, job := range d.jobs {
		if now.Sub(job.submitted) > demoJobTTL {
			delete(d.jobs, id)
		}
	}

	d.count++
	id := fmt.Sprintf("demo-%d", d.count)
	d.jobs[id] = &demoJob{submitted: now}

	return id, nil
}

func (d *DemoClient) Poll(ctx context.Context, remoteID string) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	job, ok := d.jobs[remoteID]
	if !ok {
		return &Status{State: StateFailed, Reason: "job not found"}, nil
	}

	polls := job.polls
	job.polls++

	switch polls {
	case 0:
		return Queued().Status, nil
	case 1:
		return Processing().Status, nil
	default:
		delete(d.jobs, remoteID)
		output := demoOutputs[(len(remoteID)+polls)%len(demoOutputs)]
		return Completed(output).Status, nil
	}
}

// number of jobs still tracked
func (d *DemoClient) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.jobs)
}
