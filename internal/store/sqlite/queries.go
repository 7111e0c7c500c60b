package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"saishi/internal/core"
	"saishi/internal/store"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Timestamps are stored in UTC with fixed-width nanoseconds so that text
// ordering equals chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const tournamentColumns = `id, tournament_name, event_date, participant_count, withdrawal_count,
	total_revenue_cents, wechat_payment_cents, refund_balance_cents, tournament_type, is_certified,
	medal_count, medal_price_cents, processing_fee_cents, wechat_fee_cents, certification_fee_cents,
	total_fee_cents, medal_cost_cents, host_settlement_cents, total_income_cents, is_settled,
	created_at, updated_at`

const insertTournament = `INSERT INTO tournaments (` + tournamentColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTournament(ctx context.Context, t core.Tournament) error {
	_, err := q.db.ExecContext(ctx, insertTournament,
		t.ID,
		t.TournamentName,
		t.EventDate.String(),
		t.ParticipantCount,
		t.WithdrawalCount,
		t.TotalRevenue.Cents,
		t.WechatPayment.Cents,
		t.RefundBalance.Cents,
		string(t.TournamentType),
		t.IsCertified,
		t.MedalCount,
		t.MedalPrice.Cents,
		t.ProcessingFee.Cents,
		t.WechatFee.Cents,
		t.CertificationFee.Cents,
		t.TotalFee.Cents,
		t.MedalCost.Cents,
		t.HostSettlement.Cents,
		t.TotalIncome.Cents,
		t.IsSettled,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	return err
}

const getTournament = `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ?`

func (q *Queries) GetTournament(ctx context.Context, id string) (core.Tournament, error) {
	return scanTournament(q.db.QueryRowContext(ctx, getTournament, id))
}

const updateTournamentInput = `UPDATE tournaments SET
	tournament_name = ?, event_date = ?, participant_count = ?, withdrawal_count = ?,
	total_revenue_cents = ?, wechat_payment_cents = ?, refund_balance_cents = ?, tournament_type = ?,
	is_certified = ?, medal_count = ?, medal_price_cents = ?, processing_fee_cents = ?,
	wechat_fee_cents = ?, certification_fee_cents = ?, total_fee_cents = ?, medal_cost_cents = ?,
	host_settlement_cents = ?, total_income_cents = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateTournamentInput(ctx context.Context, id string, in core.TournamentInput, f core.Fees, at time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTournamentInput,
		in.TournamentName,
		in.EventDate.String(),
		in.ParticipantCount,
		in.WithdrawalCount,
		in.TotalRevenue.Cents,
		in.WechatPayment.Cents,
		in.RefundBalance.Cents,
		string(in.TournamentType),
		in.IsCertified,
		in.MedalCount,
		in.MedalPrice.Cents,
		f.ProcessingFee.Cents,
		f.WechatFee.Cents,
		f.CertificationFee.Cents,
		f.TotalFee.Cents,
		f.MedalCost.Cents,
		f.HostSettlement.Cents,
		f.TotalIncome.Cents,
		formatTime(at),
		id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateSettlement = `UPDATE tournaments SET is_settled = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateSettlement(ctx context.Context, id string, settled bool, at time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateSettlement, settled, formatTime(at), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const touchTournament = `UPDATE tournaments SET updated_at = ? WHERE id = ?`

func (q *Queries) TouchTournament(ctx context.Context, id string, at time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, touchTournament, formatTime(at), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTournament = `DELETE FROM tournaments WHERE id = ?`

func (q *Queries) DeleteTournament(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTournament, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListTournaments(ctx context.Context, sq store.Query) ([]core.Tournament, error) {
	where, args := whereClause(sq.Filter)
	dir := "ASC"
	if sq.Desc {
		dir = "DESC"
	}
	col := sortColumns[store.ParseSortField(string(sq.Sort))]
	stmt := fmt.Sprintf("SELECT %s FROM tournaments%s ORDER BY %s %s, id %s", tournamentColumns, where, col, dir, dir)
	switch {
	case sq.Limit > 0:
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, sq.Limit, max(sq.Skip, 0))
	case sq.Skip > 0:
		stmt += " LIMIT -1 OFFSET ?"
		args = append(args, sq.Skip)
	}

	rows, err := q.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []core.Tournament{}
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) CountTournaments(ctx context.Context, f store.Filter) (int64, error) {
	where, args := whereClause(f)
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tournaments"+where, args...).Scan(&n)
	return n, err
}

func (q *Queries) SumTournaments(ctx context.Context, f store.Filter) (core.Totals, error) {
	where, args := whereClause(f)
	stmt := `SELECT
	COALESCE(SUM(total_revenue_cents), 0),
	COALESCE(SUM(total_income_cents), 0),
	COALESCE(SUM(participant_count), 0),
	COUNT(*),
	COALESCE(SUM(CASE WHEN is_settled THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN is_certified THEN 1 ELSE 0 END), 0)
FROM tournaments` + where
	var s core.Totals
	err := q.db.QueryRowContext(ctx, stmt, args...).Scan(
		&s.Revenue.Cents,
		&s.Income.Cents,
		&s.Participants,
		&s.Tournaments,
		&s.SettledCount,
		&s.CertifiedCount,
	)
	return s, err
}

var sortColumns = map[store.SortField]string{
	store.SortEventDate:    "event_date",
	store.SortCreatedAt:    "created_at",
	store.SortUpdatedAt:    "updated_at",
	store.SortTotalRevenue: "total_revenue_cents",
	store.SortName:         "tournament_name",
	store.SortParticipants: "participant_count",
}

func whereClause(f store.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.DateFrom != nil {
		conds = append(conds, "event_date >= ?")
		args = append(args, f.DateFrom.String())
	}
	if f.DateTo != nil {
		conds = append(conds, "event_date <= ?")
		args = append(args, f.DateTo.String())
	}
	if f.Type != nil {
		conds = append(conds, "tournament_type = ?")
		args = append(args, string(*f.Type))
	}
	if f.IsSettled != nil {
		conds = append(conds, "is_settled = ?")
		args = append(args, *f.IsSettled)
	}
	if f.IsCertified != nil {
		conds = append(conds, "is_certified = ?")
		args = append(args, *f.IsCertified)
	}
	if f.NameContains != "" {
		conds = append(conds, "instr(tournament_name, ?) > 0")
		args = append(args, f.NameContains)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// errMalformed marks decode failures so the repository can tell them apart
// from driver errors.
type errMalformed struct{ err error }

func (e errMalformed) Error() string { return e.err.Error() }
func (e errMalformed) Unwrap() error { return e.err }

func scanTournament(row rowScanner) (core.Tournament, error) {
	var (
		t                    core.Tournament
		eventDate, typ       string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&t.ID,
		&t.TournamentName,
		&eventDate,
		&t.ParticipantCount,
		&t.WithdrawalCount,
		&t.TotalRevenue.Cents,
		&t.WechatPayment.Cents,
		&t.RefundBalance.Cents,
		&typ,
		&t.IsCertified,
		&t.MedalCount,
		&t.MedalPrice.Cents,
		&t.ProcessingFee.Cents,
		&t.WechatFee.Cents,
		&t.CertificationFee.Cents,
		&t.TotalFee.Cents,
		&t.MedalCost.Cents,
		&t.HostSettlement.Cents,
		&t.TotalIncome.Cents,
		&t.IsSettled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return core.Tournament{}, err
	}
	t.TournamentType = core.TournamentType(typ)
	if t.EventDate, err = core.ParseDate(eventDate); err != nil {
		return core.Tournament{}, errMalformed{fmt.Errorf("event_date %q: %w", eventDate, err)}
	}
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return core.Tournament{}, errMalformed{fmt.Errorf("created_at %q: %w", createdAt, err)}
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return core.Tournament{}, errMalformed{fmt.Errorf("updated_at %q: %w", updatedAt, err)}
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
