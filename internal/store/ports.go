// Package store defines the persistence boundary for tournament records:
// the Store port, the query values passed to it, and the helpers
// every adapter shares to evaluate those queries in memory.
package store

import (
	"context"
	"time"

	"saishi/internal/core"
)

// Ports implemented by storage adapters.
type (
	// Store persists tournament records. Implementations own consistency:
	// Update must be an atomic read-modify-write on a single record.
	Store interface {
		// Insert stores t under a newly assigned id and returns that id.
		Insert(ctx context.Context, t core.Tournament) (string, error)
		// Get returns core.ErrNotFound when id is unknown.
		Get(ctx context.Context, id string) (core.Tournament, error)
		Query(ctx context.Context, q Query) ([]core.Tournament, error)
		Count(ctx context.Context, f Filter) (int64, error)
		// Update applies p and returns the stored result.
		Update(ctx context.Context, id string, p Patch) (core.Tournament, error)
		Delete(ctx context.Context, id string) error
	}

	// Summer is implemented by stores that can total a filtered set
	// natively. Results must equal core.Summarize over the same records.
	Summer interface {
		Sum(ctx context.Context, f Filter) (core.Totals, error)
	}

	// Pinger reports whether the backing engine is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Patch is a partial update. Build it with Replace or Settle so that the
// raw fields never travel without freshly computed fees.
type Patch struct {
	Input     *core.TournamentInput
	Fees      *core.Fees
	IsSettled *bool
	UpdatedAt time.Time
}

// Replace swaps all raw fields and recomputes the derived ones.
func Replace(in core.TournamentInput, now time.Time) Patch {
	fees := core.CalculateFees(in.FeeInput())
	return Patch{Input: &in, Fees: &fees, UpdatedAt: now}
}

// Settle changes only the settlement flag.
func Settle(settled bool, now time.Time) Patch {
	return Patch{IsSettled: &settled, UpdatedAt: now}
}

// Apply returns t with p applied.
func (p Patch) Apply(t core.Tournament) core.Tournament {
	if p.Input != nil && p.Fees != nil {
		t.TournamentInput = *p.Input
		t.Fees = *p.Fees
	}
	if p.IsSettled != nil {
		t.IsSettled = *p.IsSettled
	}
	t.UpdatedAt = p.UpdatedAt
	return t
}
