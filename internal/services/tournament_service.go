package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"saishi/internal/core"
	"saishi/internal/store"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// SyncPublisher announces record changes to downstream mirrors.
type SyncPublisher interface {
	PublishTournamentSync(ctx context.Context, id string) error
	PublishTournamentDelete(ctx context.Context, id string) error
}

// TournamentService validates input, runs the fee calculator and persists
// records, then publishes a sync message for each successful write.
type TournamentService struct {
	store     store.Store
	publisher SyncPublisher
	now       func() time.Time
}

func NewTournamentService(s store.Store, publisher SyncPublisher) *TournamentService {
	return &TournamentService{
		store:     s,
		publisher: publisher,
		now:       time.Now,
	}
}

// ListParams are the paging options of List. Zero values take defaults.
type ListParams struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// Page is one page of records plus the unpaged total.
type Page struct {
	Tournaments []core.Tournament `json:"tournaments"`
	Total       int64             `json:"total"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	p.Sort = string(store.ParseSortField(p.Sort))
	if !strings.EqualFold(p.Order, "asc") {
		p.Order = "desc"
	}
	return p
}

// List returns a page of records ordered as requested.
func (s *TournamentService) List(ctx context.Context, params ListParams) (Page, error) {
	p := params.normalized()
	records, err := s.store.Query(ctx, store.Query{
		Sort:  store.SortField(p.Sort),
		Desc:  p.Order == "desc",
		Skip:  (p.Page - 1) * p.Limit,
		Limit: p.Limit,
	})
	if err != nil {
		return Page{}, fmt.Errorf("list tournaments: %w", err)
	}
	total, err := s.store.Count(ctx, store.Filter{})
	if err != nil {
		return Page{}, fmt.Errorf("count tournaments: %w", err)
	}
	return Page{Tournaments: records, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *TournamentService) Get(ctx context.Context, id string) (core.Tournament, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Tournament{}, fmt.Errorf("get tournament %s: %w", id, err)
	}
	return t, nil
}

// Create validates d, computes fees and stores a new unsettled record.
func (s *TournamentService) Create(ctx context.Context, d core.TournamentDraft) (core.Tournament, error) {
	if err := core.NewValidationError(d.Validate()...); err != nil {
		return core.Tournament{}, err
	}
	t := core.NewTournament(d.Input(), s.now())
	id, err := s.store.Insert(ctx, t)
	if err != nil {
		return core.Tournament{}, fmt.Errorf("create tournament: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Tournament created",
		"id", id,
		"type", t.TournamentType.String(),
		"total_fee", t.TotalFee.String(),
		"host_settlement", t.HostSettlement.String())
	s.publishSync(ctx, id)
	return t, nil
}

// Update replaces every raw field of id and recomputes its fees.
func (s *TournamentService) Update(ctx context.Context, id string, d core.TournamentDraft) (core.Tournament, error) {
	if err := core.NewValidationError(d.Validate()...); err != nil {
		return core.Tournament{}, err
	}
	t, err := s.store.Update(ctx, id, store.Replace(d.Input(), s.now()))
	if err != nil {
		return core.Tournament{}, fmt.Errorf("update tournament %s: %w", id, err)
	}
	s.publishSync(ctx, id)
	return t, nil
}

// SetSettlement flips only the settlement flag; fees are untouched.
func (s *TournamentService) SetSettlement(ctx context.Context, id string, settled bool) (core.Tournament, error) {
	t, err := s.store.Update(ctx, id, store.Settle(settled, s.now()))
	if err != nil {
		return core.Tournament{}, fmt.Errorf("settle tournament %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Tournament settlement changed", "id", id, "settled", settled)
	s.publishSync(ctx, id)
	return t, nil
}

func (s *TournamentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tournament %s: %w", id, err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishTournamentDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
		}
	}
	return nil
}

// Preview computes fees for unsaved input with defaults applied. Missing
// fields are not an error here; only values too large to compute with are
// rejected. It never touches the store.
func (s *TournamentService) Preview(d core.TournamentDraft) (core.Fees, error) {
	if err := core.NewValidationError(d.RangeProblems()...); err != nil {
		return core.Fees{}, err
	}
	return core.CalculateFees(d.Input().FeeInput()), nil
}

// publishSync never fails the caller: the record is already stored and the
// worker's periodic rebuild repairs a missed message.
func (s *TournamentService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher configured, skipping sync message", "id", id)
		return
	}
	if err := s.publisher.PublishTournamentSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}
