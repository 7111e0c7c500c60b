package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"saishi/internal/amqp"
	"saishi/internal/core"
	"saishi/internal/sheets"
	"saishi/internal/store"
)

// Exporter yields the full record set in export order.
type Exporter interface {
	ExportSet(ctx context.Context, f store.Filter) ([]core.Tournament, error)
}

// SyncWorker copies tournament records from the store into a spreadsheet
// mirror, one record per sync message, plus a periodic full rewrite that
// repairs anything a lost message left behind.
type SyncWorker struct {
	store    store.Store
	exporter Exporter
	mirror   sheets.RecordMirror
}

func NewSyncWorker(s store.Store, exporter Exporter, mirror sheets.RecordMirror) *SyncWorker {
	return &SyncWorker{
		store:    s,
		exporter: exporter,
		mirror:   mirror,
	}
}

// HandleSyncMessage applies one message. Upserts re-read the record so the
// mirror always receives current data; a record deleted since the message
// was sent is removed instead.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TournamentSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "op", msg.Op)

	if msg.Op == amqp.OpDelete {
		if err := w.mirror.Delete(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete from mirror: %w", err)
		}
		return nil
	}

	t, err := w.store.Get(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Record vanished before sync, removing from mirror", "id", msg.ID)
		if err := w.mirror.Delete(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete from mirror: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get tournament: %w", err)
	}
	if err := w.mirror.Upsert(ctx, t); err != nil {
		return fmt.Errorf("upsert to mirror: %w", err)
	}
	return nil
}

// Reconcile rewrites the mirror from the full record set.
func (w *SyncWorker) Reconcile(ctx context.Context) error {
	start := time.Now()
	records, err := w.exporter.ExportSet(ctx, store.Filter{})
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if err := w.mirror.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	slog.InfoContext(ctx, "Mirror reconciled",
		"records", len(records),
		"duration", time.Since(start))
	return nil
}

// Schedule registers Reconcile on s every interval. Runs never overlap.
func (w *SyncWorker) Schedule(ctx context.Context, s gocron.Scheduler, every time.Duration) (gocron.Job, error) {
	if every <= 0 {
		return nil, fmt.Errorf("invalid reconcile interval %s", every)
	}
	job, err := s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if err := w.Reconcile(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic reconcile failed", "error", err)
			}
		}),
		gocron.WithName("reconcile-mirror"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule reconcile: %w", err)
	}
	return job, nil
}
