package tryon

import (
	"context"
	"fmt"
	"testing"
	"time"

	"codeberg.org/iburba/server/iburba/accounts"
	"codeberg.org/iburba/server/iburba/usage"
	"codeberg.org/iburba/server/internal/auth"
	apierrors "codeberg.org/iburba/server/internal/errors"
	"codeberg.org/iburba/server/internal/fashn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// implements auth.Resolver for testing
type mockResolver struct {
	resolveFunc func(ctx context.Context, credential string) (*auth.Identity, error)
	calls       int
}

func (m *mockResolver) Resolve(ctx context.Context, credential string) (*auth.Identity, error) {
	m.calls++
	return m.resolveFunc(ctx, credential)
}

func resolverFor(identity *auth.Identity) *mockResolver {
	return &mockResolver{
		resolveFunc: func(_ context.Context, credential string) (*auth.Identity, error) {
			if credential != "Bearer good" {
				return nil, fmt.Errorf("%w: token is malformed", auth.ErrUnauthenticated)
			}
			return identity, nil
		},
	}
}

func newTestService(t *testing.T, resolver auth.Resolver, client fashn.Client) (*Service, *countingLedger, *usage.MemoryStore) {
	t.Helper()

	ledger, store := newRealLedger(defaultLimit, 50)
	o, _ := newTestOrchestrator(client, ledger)

	times := []time.Time{
		time.Date(2025, 7, 30, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 30, 12, 0, 12, 340_000_000, time.UTC),
	}
	o.now = func() time.Time {
		next := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return next
	}

	return NewService(resolver, o), ledger, store
}

func TestSubmitTryon_Success(t *testing.T) {
	stub := fashn.NewStubClient(fashn.Queued(), fashn.Processing(), fashn.Completed("https://cdn.example/out.png"))
	svc, ledger, _ := newTestService(t, resolverFor(freeUser), stub)

	result := svc.SubmitTryon(context.Background(), "Bearer good", testRequest)

	require.True(t, result.Success, result.Error)
	assert.NotEmpty(t, result.JobID)
	assert.Equal(t, "https://cdn.example/out.png", result.ResultImage)
	assert.Equal(t, 12.3, result.ProcessingTime)
	assert.InDelta(t, 0.075, result.Cost, 1e-9)
	require.NotNil(t, result.RemainingUsage)
	assert.Equal(t, 2, *result.RemainingUsage)
	assert.Empty(t, result.ErrorCode)
	assert.Equal(t, int32(1), ledger.records.Load())
}

func TestSubmitTryon_Unauthenticated(t *testing.T) {
	stub := fashn.NewStubClient(fashn.Completed("X"))
	resolver := resolverFor(freeUser)
	svc, ledger, _ := newTestService(t, resolver, stub)

	for _, credential := range []string{"", "Bearer expired", "garbage"} {
		result := svc.SubmitTryon(context.Background(), credential, testRequest)

		assert.False(t, result.Success)
		assert.Equal(t, apierrors.CodeUnauthenticated, result.ErrorCode)
		assert.Equal(t, "authentication required", result.Error)
		assert.Empty(t, result.JobID)
	}

	assert.Equal(t, 3, resolver.calls)
	assert.Empty(t, stub.Submits())
	assert.Equal(t, int32(0), ledger.records.Load())
}

func TestSubmitTryon_ResolveStoreFailure(t *testing.T) {
	resolver := &mockResolver{
		resolveFunc: func(context.Context, string) (*auth.Identity, error) {
			return nil, fmt.Errorf("failed to load account: connection refused")
		},
	}
	svc, _, _ := newTestService(t, resolver, fashn.NewStubClient(fashn.Completed("X")))

	result := svc.SubmitTryon(context.Background(), "Bearer good", testRequest)

	assert.False(t, result.Success)
	assert.Equal(t, apierrors.CodeServerError, result.ErrorCode)
}

func TestSubmitTryon_MissingImages(t *testing.T) {
	stub := fashn.NewStubClient(fashn.Completed("X"))
	resolver := resolverFor(freeUser)
	svc, _, _ := newTestService(t, resolver, stub)

	result := svc.SubmitTryon(context.Background(), "Bearer good", Request{PersonImage: "UA==", GarmentImage: "  "})

	assert.False(t, result.Success)
	assert.Equal(t, apierrors.CodeValidationError, result.ErrorCode)
	assert.Equal(t, "person_image and garment_image are required", result.Error)
	assert.Equal(t, 1, resolver.calls)
	assert.Empty(t, stub.Submits())
}

func TestSubmitTryon_UserQuota(t *testing.T) {
	stub := fashn.NewStubClient(fashn.Completed("X"))
	svc, ledger, store := newTestService(t, resolverFor(freeUser), stub)
	store.Put(usage.UsageRecord{UserID: freeUser.UserID, Day: ledger.Today(), Count: 3, Cost: 0.225})

	result := svc.SubmitTryon(context.Background(), "Bearer good", testRequest)

	assert.False(t, result.Success)
	assert.Equal(t, apierrors.CodeQuotaExceeded, result.ErrorCode)
	assert.Equal(t, "daily usage limit reached (3/3)", result.Error)
	assert.NotEmpty(t, result.JobID)
	assert.Empty(t, stub.Submits())
}

func TestSubmitTryon_SystemQuota(t *testing.T) {
	stub := fashn.NewStubClient(fashn.Completed("X"))
	svc, ledger, store := newTestService(t, resolverFor(proUser), stub)
	store.Put(usage.UsageRecord{UserID: "others", Day: ledger.Today(), Count: 700, Cost: 50.0})

	result := svc.SubmitTryon(context.Background(), "Bearer good", testRequest)

	assert.False(t, result.Success)
	assert.Equal(t, apierrors.CodeQuotaExceeded, result.ErrorCode)
	assert.Contains(t, result.Error, "capacity")
	assert.Empty(t, stub.Submits())
}

func TestSubmitTryon_FailureCodes(t *testing.T) {
	tests := []struct {
		name     string
		steps    []fashn.StubStep
		code     string
		contains string
	}{
		{
			name:     "remote failure",
			steps:    []fashn.StubStep{fashn.Failed("garment not detected")},
			code:     apierrors.CodeRemoteJobFailed,
			contains: "try-on failed: garment not detected",
		},
		{
			name:     "empty output",
			steps:    []fashn.StubStep{fashn.Completed()},
			code:     apierrors.CodeRemoteJobFailed,
			contains: "no output produced",
		},
		{
			name:     "timeout",
			steps:    []fashn.StubStep{fashn.Processing()},
			code:     apierrors.CodeTimeout,
			contains: "timed out after 1m0s",
		},
		{
			name:     "protocol error",
			steps:    []fashn.StubStep{{Err: fmt.Errorf("%w: bad json", fashn.ErrRemoteProtocol)}},
			code:     apierrors.CodeRemoteProtocolError,
			contains: "unexpected response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ledger, _ := newTestService(t, resolverFor(proUser), fashn.NewStubClient(tt.steps...))

			result := svc.SubmitTryon(context.Background(), "Bearer good", testRequest)

			assert.False(t, result.Success)
			assert.Equal(t, tt.code, result.ErrorCode)
			assert.Contains(t, result.Error, tt.contains)
			assert.NotEmpty(t, result.JobID)
			assert.Empty(t, result.ResultImage)
			assert.Equal(t, int32(0), ledger.records.Load())
		})
	}
}

func TestSubmitTryon_RemoteUnavailableOnSubmit(t *testing.T) {
	stub := fashn.NewStubClient()
	stub.SubmitErr = fmt.Errorf("%w: status 503", fashn.ErrRemoteUnavailable)
	svc, _, _ := newTestService(t, resolverFor(proUser), stub)

	result := svc.SubmitTryon(context.Background(), "Bearer good", testRequest)

	assert.False(t, result.Success)
	assert.Equal(t, apierrors.CodeRemoteUnavailable, result.ErrorCode)
}

func TestSubmitTryon_Canceled(t *testing.T) {
	svc, ledger, _ := newTestService(t, resolverFor(proUser), fashn.NewStubClient(fashn.Processing()))

	ctx, cancel := context.WithCancel(context.Background())
	svc.orchestrator.wait = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	result := svc.SubmitTryon(ctx, "Bearer good", testRequest)

	assert.False(t, result.Success)
	assert.Equal(t, apierrors.CodeCanceled, result.ErrorCode)
	assert.Equal(t, int32(0), ledger.records.Load())
}

func TestDescribe_PlanAgnostic(t *testing.T) {
	code, msg := describe(fmt.Errorf("wrapped: %w", &usage.QuotaError{Scope: usage.ScopeUser, Used: 50, Limit: 50}))

	assert.Equal(t, apierrors.CodeQuotaExceeded, code)
	assert.Equal(t, "daily usage limit reached (50/50)", msg)
}

func TestSubmitTryon_BusinessRemainingUnlimited(t *testing.T) {
	svc, _, _ := newTestService(t, resolverFor(&auth.Identity{UserID: "b", Plan: accounts.PlanBusiness}), fashn.NewStubClient(fashn.Completed("X")))

	result := svc.SubmitTryon(context.Background(), "Bearer good", testRequest)

	require.True(t, result.Success)
	require.NotNil(t, result.RemainingUsage)
	assert.Equal(t, usage.Unlimited, *result.RemainingUsage)
}
