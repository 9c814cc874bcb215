package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/iburba/server/iburba/accounts"
)

// daily ceiling value that disables the per-user check
const Unlimited = -1

// days covered by Stats.History, today included
const historyDays = 30

// layout of the calendar day key
const DayLayout = "2006-01-02"

var ErrQuotaExceeded = errors.New("quota exceeded")

type Scope string

const (
	ScopeSystem Scope = "system"
	ScopeUser   Scope = "user"
)

// carries which ceiling was hit; matches ErrQuotaExceeded with errors.Is
type QuotaError struct {
	Scope Scope
	Used  float64
	Limit float64
}

func (e *QuotaError) Error() string {
	if e.Scope == ScopeSystem {
		return fmt.Sprintf("daily system cost limit reached (%.4f/%.2f)", e.Used, e.Limit)
	}

	return fmt.Sprintf("daily usage limit reached (%d/%d)", int(e.Used), int(e.Limit))
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// per-tier daily request ceilings, Unlimited disables the check
type Limits struct {
	Free     int
	Pro      int
	Business int
}

// returns the ceiling for plan, unknown plans get the free ceiling
func (l Limits) ForPlan(plan accounts.Plan) int {
	switch plan {
	case accounts.PlanPro:
		return l.Pro
	case accounts.PlanBusiness:
		return l.Business
	default:
		return l.Free
	}
}

// ledger settings supplied from configuration
type Config struct {
	Limits          Limits
	SystemDailyCost float64
	Location        *time.Location
}

// one user's usage for one calendar day
type UsageRecord struct {
	UserID string  `json:"-"`
	Day    string  `json:"day"`
	Count  int     `json:"count"`
	Cost   float64 `json:"cost"`
}

// usage summary returned by the stats endpoint
type Stats struct {
	Day       string        `json:"day"`
	Plan      accounts.Plan `json:"plan"`
	Used      int           `json:"used"`
	Limit     int           `json:"limit"`
	Remaining int           `json:"remaining"`
	Unlimited bool          `json:"unlimited"`
	History   []UsageRecord `json:"history"`
}

// persistence contract for usage records
type Store interface {
	Initialize(ctx context.Context) error
	// atomically adds one request and cost to (userID, day), creating the record if absent
	Increment(ctx context.Context, userID, day string, cost float64) error
	Count(ctx context.Context, userID, day string) (int, error)
	TotalCost(ctx context.Context, day string) (float64, error)
	// returns records for userID with day >= since, oldest first
	History(ctx context.Context, userID, since string) ([]UsageRecord, error)
}
