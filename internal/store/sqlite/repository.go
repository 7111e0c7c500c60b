// Package sqlite is the default Store: an embedded SQLite database with
// embedded migrations and native aggregation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"saishi/internal/core"
	"saishi/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ store.Store  = (*SQLiteRepository)(nil)
	_ store.Summer = (*SQLiteRepository)(nil)
	_ store.Pinger = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; update transactions read then write.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return core.Unavailable("ping sqlite", err)
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, t core.Tournament) (string, error) {
	t.ID = uuid.NewString()
	if err := r.queries.InsertTournament(ctx, t); err != nil {
		return "", core.Unavailable("insert tournament", err)
	}
	slog.InfoContext(ctx, "Tournament saved to SQLite",
		"id", t.ID,
		"name", t.TournamentName,
		"event_date", t.EventDate.String(),
		"total_fee", t.TotalFee.String())
	return t.ID, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Tournament, error) {
	t, err := r.queries.GetTournament(ctx, id)
	if err != nil {
		return core.Tournament{}, classify("get tournament", err)
	}
	return t, nil
}

func (r *SQLiteRepository) Query(ctx context.Context, q store.Query) ([]core.Tournament, error) {
	out, err := r.queries.ListTournaments(ctx, q)
	if err != nil {
		return nil, classify("query tournaments", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, f store.Filter) (int64, error) {
	n, err := r.queries.CountTournaments(ctx, f)
	if err != nil {
		return 0, core.Unavailable("count tournaments", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Sum(ctx context.Context, f store.Filter) (core.Totals, error) {
	s, err := r.queries.SumTournaments(ctx, f)
	if err != nil {
		return core.Totals{}, core.Unavailable("sum tournaments", err)
	}
	return s, nil
}

// Update runs the patch and the read-back in one transaction.
func (r *SQLiteRepository) Update(ctx context.Context, id string, p store.Patch) (core.Tournament, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Tournament{}, core.Unavailable("begin update", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	var affected int64
	switch {
	case p.Input != nil && p.Fees != nil:
		affected, err = q.UpdateTournamentInput(ctx, id, *p.Input, *p.Fees, p.UpdatedAt)
		if err == nil && p.IsSettled != nil {
			affected, err = q.UpdateSettlement(ctx, id, *p.IsSettled, p.UpdatedAt)
		}
	case p.IsSettled != nil:
		affected, err = q.UpdateSettlement(ctx, id, *p.IsSettled, p.UpdatedAt)
	default:
		affected, err = q.TouchTournament(ctx, id, p.UpdatedAt)
	}
	if err != nil {
		return core.Tournament{}, core.Unavailable("update tournament", err)
	}
	if affected == 0 {
		return core.Tournament{}, core.ErrNotFound
	}

	t, err := q.GetTournament(ctx, id)
	if err != nil {
		return core.Tournament{}, classify("reload tournament", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Tournament{}, core.Unavailable("commit update", err)
	}
	return t, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteTournament(ctx, id)
	if err != nil {
		return core.Unavailable("delete tournament", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Tournament deleted from SQLite", "id", id)
	return nil
}

func classify(op string, err error) error {
	var bad errMalformed
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return core.ErrNotFound
	case errors.As(err, &bad):
		return core.Malformed(op, bad.err)
	default:
		return core.Unavailable(op, err)
	}
}
