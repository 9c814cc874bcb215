package usage

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"codeberg.org/iburba/server/iburba/accounts"
)

const lockStripes = 64

// gates admission on daily ceilings and records completed jobs
type Ledger struct {
	store   Store
	limits  Limits
	ceiling float64
	loc     *time.Location
	now     func() time.Time
	stripes [lockStripes]sync.Mutex
}

// creates a new ledger over store
func NewLedger(store Store, cfg Config) *Ledger {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Ledger{
		store:   store,
		limits:  cfg.Limits,
		ceiling: cfg.SystemDailyCost,
		loc:     loc,
		now:     time.Now,
	}
}

// returns today's day key in the ledger's timezone
func (l *Ledger) Today() string {
	return l.now().In(l.loc).Format(DayLayout)
}

// fails with ErrQuotaExceeded once today's total cost has reached the ceiling
func (l *Ledger) CheckSystemCostLimit(ctx context.Context) error {
	total, err := l.store.TotalCost(ctx, l.Today())
	if err != nil {
		return fmt.Errorf("failed to read system cost: %w", err)
	}

	if total >= l.ceiling {
		return &QuotaError{Scope: ScopeSystem, Used: total, Limit: l.ceiling}
	}

	return nil
}

// fails with ErrQuotaExceeded once the user has used the plan's daily ceiling
func (l *Ledger) CheckUserLimit(ctx context.Context, userID string, plan accounts.Plan) error {
	limit := l.limits.ForPlan(plan)
	if limit < 0 {
		return nil
	}

	used, err := l.DailyUsage(ctx, userID)
	if err != nil {
		return err
	}

	if used >= limit {
		return &QuotaError{Scope: ScopeUser, Used: float64(used), Limit: float64(limit)}
	}

	return nil
}

// adds one request and cost to today's record for the user
func (l *Ledger) RecordUsage(ctx context.Context, userID string, cost float64) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	if cost < 0 {
		return fmt.Errorf("cost must not be negative: %v", cost)
	}

	day := l.Today()

	mu := l.stripe(userID, day)
	mu.Lock()
	defer mu.Unlock()

	if err := l.store.Increment(ctx, userID, day, cost); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}

	return nil
}

// returns today's request count for the user
func (l *Ledger) DailyUsage(ctx context.Context, userID string) (int, error) {
	count, err := l.store.Count(ctx, userID, l.Today())
	if err != nil {
		return 0, fmt.Errorf("failed to read daily usage: %w", err)
	}

	return count, nil
}

// returns requests left today, or Unlimited
func (l *Ledger) Remaining(ctx context.Context, userID string, plan accounts.Plan) (int, error) {
	limit := l.limits.ForPlan(plan)
	if limit < 0 {
		return Unlimited, nil
	}

	used, err := l.DailyUsage(ctx, userID)
	if err != nil {
		return 0, err
	}

	return max(limit-used, 0), nil
}

// returns today's usage with the last 30 days of history
func (l *Ledger) Stats(ctx context.Context, userID string, plan accounts.Plan) (*Stats, error) {
	now := l.now().In(l.loc)
	today := now.Format(DayLayout)
	since := now.AddDate(0, 0, -(historyDays - 1)).Format(DayLayout)

	used, err := l.DailyUsage(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := l.store.History(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage history: %w", err)
	}

	if history == nil {
		history = []UsageRecord{}
	}

	limit := l.limits.ForPlan(plan)

	stats := &Stats{
		Day:       today,
		Plan:      plan,
		Used:      used,
		Limit:     limit,
		Remaining: Unlimited,
		Unlimited: limit < 0,
		History:   history,
	}

	if !stats.Unlimited {
		stats.Remaining = max(limit-used, 0)
	}

	return stats, nil
}

// returns the configured ceilings
func (l *Ledger) Limits() Limits {
	return l.limits
}

func (l *Ledger) stripe(userID, day string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(day))

	return &l.stripes[h.Sum32()%lockStripes]
}
