package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"saishi/internal/core"
	"saishi/internal/store"
)

const (
	DefaultRecentLimit   = 10
	MaxRecentLimit       = 100
	DashboardRecentLimit = 5
)

// Aggregator computes read-only summaries over stored records. It trusts
// the derived fields already on each record and keeps no state between
// calls, so every result reflects the store at the time of the call.
type Aggregator struct {
	store store.Store
	now   func() time.Time
}

func NewAggregator(s store.Store) *Aggregator {
	return &Aggregator{store: s, now: time.Now}
}

// totals prefers the store's native aggregation and falls back to
// scanning the matching records.
func (a *Aggregator) totals(ctx context.Context, f store.Filter) (core.Totals, error) {
	if summer, ok := a.store.(store.Summer); ok {
		return summer.Sum(ctx, f)
	}
	records, err := a.store.Query(ctx, store.Query{Filter: f})
	if err != nil {
		return core.Totals{}, err
	}
	return core.Summarize(records), nil
}

// TotalStats sums every record.
func (a *Aggregator) TotalStats(ctx context.Context) (core.Totals, error) {
	s, err := a.totals(ctx, store.Filter{})
	if err != nil {
		return core.Totals{}, fmt.Errorf("total stats: %w", err)
	}
	return s, nil
}

// RangeStats sums records whose event date lies in [from, to]; either
// bound may be nil.
func (a *Aggregator) RangeStats(ctx context.Context, from, to *core.Date) (core.Totals, error) {
	s, err := a.totals(ctx, store.Filter{DateFrom: from, DateTo: to})
	if err != nil {
		return core.Totals{}, fmt.Errorf("range stats: %w", err)
	}
	return s, nil
}

// MonthlyStats sums records dated within the given calendar month.
func (a *Aggregator) MonthlyStats(ctx context.Context, year, month int) (core.MonthlyStats, error) {
	if month < 1 || month > 12 || year < 1 {
		return core.MonthlyStats{}, core.NewValidationError(fmt.Sprintf("无效的年月: %d-%d", year, month))
	}
	s, err := a.totals(ctx, store.MonthFilter(year, month))
	if err != nil {
		return core.MonthlyStats{}, fmt.Errorf("monthly stats %04d-%02d: %w", year, month, err)
	}
	return s.Monthly(year, month), nil
}

// Recent returns the most recently created records, newest first.
func (a *Aggregator) Recent(ctx context.Context, limit int) ([]core.Tournament, error) {
	if limit < 1 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	out, err := a.store.Query(ctx, store.Query{Sort: store.SortCreatedAt, Desc: true, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("recent tournaments: %w", err)
	}
	return out, nil
}

// ExportSet returns every record matching f, latest event first.
func (a *Aggregator) ExportSet(ctx context.Context, f store.Filter) ([]core.Tournament, error) {
	out, err := a.store.Query(ctx, store.Query{Filter: f, Sort: store.SortEventDate, Desc: true})
	if err != nil {
		return nil, fmt.Errorf("export set: %w", err)
	}
	return out, nil
}

// Dashboard fetches all-time totals, the current local month and the
// latest records concurrently. Any failure discards the whole result.
func (a *Aggregator) Dashboard(ctx context.Context) (core.Dashboard, error) {
	now := a.now()
	var (
		totals  core.Totals
		monthly core.MonthlyStats
		recent  []core.Tournament
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = a.TotalStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = a.MonthlyStats(gctx, now.Year(), int(now.Month()))
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = a.Recent(gctx, DashboardRecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return core.Dashboard{Totals: totals, MonthlyStats: monthly, Recent: recent}, nil
}
