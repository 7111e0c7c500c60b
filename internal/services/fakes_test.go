package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"saishi/internal/core"
	"saishi/internal/store"
	"saishi/internal/store/memory"
)

// brokenStore fails every call as an unreachable backend would.
type brokenStore struct{}

var errDown = errors.New("connection refused")

func (brokenStore) Insert(context.Context, core.Tournament) (string, error) {
	return "", core.Unavailable("insert", errDown)
}
func (brokenStore) Get(context.Context, string) (core.Tournament, error) {
	return core.Tournament{}, core.Unavailable("get", errDown)
}
func (brokenStore) Query(context.Context, store.Query) ([]core.Tournament, error) {
	return nil, core.Unavailable("query", errDown)
}
func (brokenStore) Count(context.Context, store.Filter) (int64, error) {
	return 0, core.Unavailable("count", errDown)
}
func (brokenStore) Update(context.Context, string, store.Patch) (core.Tournament, error) {
	return core.Tournament{}, core.Unavailable("update", errDown)
}
func (brokenStore) Delete(context.Context, string) error {
	return core.Unavailable("delete", errDown)
}

// summingStore adds native aggregation on top of the memory store.
type summingStore struct {
	*memory.Store
	mu    sync.Mutex
	calls int
}

func (s *summingStore) Sum(ctx context.Context, f store.Filter) (core.Totals, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	all, err := s.Store.Query(ctx, store.Query{Filter: f})
	if err != nil {
		return core.Totals{}, err
	}
	return core.Summarize(all), nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	synced  []string
	deleted []string
	err     error
}

func (p *recordingPublisher) PublishTournamentSync(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.synced = append(p.synced, id)
	return p.err
}

func (p *recordingPublisher) PublishTournamentDelete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.err
}

func input(name string, date core.Date, typ core.TournamentType, revenue int64, participants int64, certified bool) core.TournamentInput {
	return core.TournamentInput{
		TournamentName:   name,
		EventDate:        date,
		ParticipantCount: participants,
		TotalRevenue:     core.Yuan(revenue),
		TournamentType:   typ,
		IsCertified:      certified,
		MedalPrice:       core.DefaultMedalPrice,
	}
}

// seedStore inserts records created one minute apart, in order.
func seedStore(t *testing.T, s store.Store, inputs ...core.TournamentInput) []core.Tournament {
	t.Helper()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	out := make([]core.Tournament, 0, len(inputs))
	for i, in := range inputs {
		rec := core.NewTournament(in, base.Add(time.Duration(i)*time.Minute))
		id, err := s.Insert(context.Background(), rec)
		require.NoError(t, err)
		rec.ID = id
		out = append(out, rec)
	}
	return out
}
