// Package postgres is a Store backed by PostgreSQL through gorm, for
// deployments that outgrow the embedded SQLite file.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"saishi/internal/core"
	"saishi/internal/store"
)

type tournamentRow struct {
	ID                    string    `gorm:"primaryKey;type:uuid"`
	TournamentName        string    `gorm:"not null"`
	EventDate             time.Time `gorm:"type:date;not null;index"`
	ParticipantCount      int64     `gorm:"not null;default:0"`
	WithdrawalCount       int64     `gorm:"not null;default:0"`
	TotalRevenueCents     int64     `gorm:"not null;default:0"`
	WechatPaymentCents    int64     `gorm:"not null;default:0"`
	RefundBalanceCents    int64     `gorm:"not null;default:0"`
	TournamentType        string    `gorm:"not null;index"`
	IsCertified           bool      `gorm:"not null;default:false"`
	MedalCount            int64     `gorm:"not null;default:0"`
	MedalPriceCents       int64     `gorm:"not null;default:1800"`
	ProcessingFeeCents    int64     `gorm:"not null"`
	WechatFeeCents        int64     `gorm:"not null"`
	CertificationFeeCents int64     `gorm:"not null"`
	TotalFeeCents         int64     `gorm:"not null"`
	MedalCostCents        int64     `gorm:"not null"`
	HostSettlementCents   int64     `gorm:"not null"`
	TotalIncomeCents      int64     `gorm:"not null"`
	IsSettled             bool      `gorm:"not null;default:false"`
	CreatedAt             time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt             time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (tournamentRow) TableName() string { return "tournaments" }

type Store struct {
	db *gorm.DB
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Summer = (*Store)(nil)
	_ store.Pinger = (*Store)(nil)
)

// Open connects to dsn and migrates the tournaments table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&tournamentRow{}); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return New(db), nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return core.Unavailable("ping postgres", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, t core.Tournament) (string, error) {
	t.ID = uuid.NewString()
	row := toRow(t)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", core.Unavailable("insert tournament", err)
	}
	slog.InfoContext(ctx, "Tournament saved to Postgres", "id", t.ID, "name", t.TournamentName)
	return t.ID, nil
}

func (s *Store) Get(ctx context.Context, id string) (core.Tournament, error) {
	var row tournamentRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return core.Tournament{}, classify("get tournament", err)
	}
	return fromRow(row), nil
}

func (s *Store) Query(ctx context.Context, q store.Query) ([]core.Tournament, error) {
	var rows []tournamentRow
	if err := s.db.WithContext(ctx).Scopes(selectScope(q)).Find(&rows).Error; err != nil {
		return nil, core.Unavailable("query tournaments", err)
	}
	out := make([]core.Tournament, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, f store.Filter) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&tournamentRow{}).Scopes(filterScope(f)).Count(&n).Error; err != nil {
		return 0, core.Unavailable("count tournaments", err)
	}
	return n, nil
}

func (s *Store) Sum(ctx context.Context, f store.Filter) (core.Totals, error) {
	var agg struct {
		Revenue      int64
		Income       int64
		Participants int64
		Tournaments  int64
		Settled      int64
		Certified    int64
	}
	err := s.db.WithContext(ctx).Model(&tournamentRow{}).Scopes(filterScope(f)).Select(`
		COALESCE(SUM(total_revenue_cents), 0)::bigint AS revenue,
		COALESCE(SUM(total_income_cents), 0)::bigint AS income,
		COALESCE(SUM(participant_count), 0)::bigint AS participants,
		COUNT(*) AS tournaments,
		COALESCE(SUM(CASE WHEN is_settled THEN 1 ELSE 0 END), 0)::bigint AS settled,
		COALESCE(SUM(CASE WHEN is_certified THEN 1 ELSE 0 END), 0)::bigint AS certified`).
		Scan(&agg).Error
	if err != nil {
		return core.Totals{}, core.Unavailable("sum tournaments", err)
	}
	return core.Totals{
		Revenue:        core.Money{Cents: agg.Revenue},
		Income:         core.Money{Cents: agg.Income},
		Participants:   agg.Participants,
		Tournaments:    agg.Tournaments,
		SettledCount:   agg.Settled,
		CertifiedCount: agg.Certified,
	}, nil
}

// Update locks the row, applies p and saves it in one transaction.
func (s *Store) Update(ctx context.Context, id string, p store.Patch) (core.Tournament, error) {
	var out core.Tournament
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row tournamentRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&row).Error; err != nil {
			return err
		}
		out = p.Apply(fromRow(row))
		updated := toRow(out)
		return tx.Save(&updated).Error
	})
	if err != nil {
		return core.Tournament{}, classify("update tournament", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&tournamentRow{})
	if res.Error != nil {
		return core.Unavailable("delete tournament", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

var sortColumns = map[store.SortField]string{
	store.SortEventDate:    "event_date",
	store.SortCreatedAt:    "created_at",
	store.SortUpdatedAt:    "updated_at",
	store.SortTotalRevenue: "total_revenue_cents",
	store.SortName:         "tournament_name",
	store.SortParticipants: "participant_count",
}

func filterScope(f store.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.DateFrom != nil {
			db = db.Where("event_date >= ?", f.DateFrom.Time)
		}
		if f.DateTo != nil {
			db = db.Where("event_date <= ?", f.DateTo.Time)
		}
		if f.Type != nil {
			db = db.Where("tournament_type = ?", string(*f.Type))
		}
		if f.IsSettled != nil {
			db = db.Where("is_settled = ?", *f.IsSettled)
		}
		if f.IsCertified != nil {
			db = db.Where("is_certified = ?", *f.IsCertified)
		}
		if f.NameContains != "" {
			db = db.Where("strpos(tournament_name, ?) > 0", f.NameContains)
		}
		return db
	}
}

func selectScope(q store.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(filterScope(q.Filter))
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		col := sortColumns[store.ParseSortField(string(q.Sort))]
		// Byte order on names matches the in-memory reference.
		if col == "tournament_name" {
			col = `tournament_name COLLATE "C"`
		}
		db = db.Order(fmt.Sprintf("%s %s, id %s", col, dir, dir))
		if q.Skip > 0 {
			db = db.Offset(q.Skip)
		}
		if q.Limit > 0 {
			db = db.Limit(q.Limit)
		}
		return db
	}
}

func toRow(t core.Tournament) tournamentRow {
	return tournamentRow{
		ID:                    t.ID,
		TournamentName:        t.TournamentName,
		EventDate:             t.EventDate.Time,
		ParticipantCount:      t.ParticipantCount,
		WithdrawalCount:       t.WithdrawalCount,
		TotalRevenueCents:     t.TotalRevenue.Cents,
		WechatPaymentCents:    t.WechatPayment.Cents,
		RefundBalanceCents:    t.RefundBalance.Cents,
		TournamentType:        string(t.TournamentType),
		IsCertified:           t.IsCertified,
		MedalCount:            t.MedalCount,
		MedalPriceCents:       t.MedalPrice.Cents,
		ProcessingFeeCents:    t.ProcessingFee.Cents,
		WechatFeeCents:        t.WechatFee.Cents,
		CertificationFeeCents: t.CertificationFee.Cents,
		TotalFeeCents:         t.TotalFee.Cents,
		MedalCostCents:        t.MedalCost.Cents,
		HostSettlementCents:   t.HostSettlement.Cents,
		TotalIncomeCents:      t.TotalIncome.Cents,
		IsSettled:             t.IsSettled,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
}

func fromRow(r tournamentRow) core.Tournament {
	return core.Tournament{
		ID: r.ID,
		TournamentInput: core.TournamentInput{
			TournamentName:   r.TournamentName,
			EventDate:        core.DateOf(r.EventDate),
			ParticipantCount: r.ParticipantCount,
			WithdrawalCount:  r.WithdrawalCount,
			TotalRevenue:     core.Money{Cents: r.TotalRevenueCents},
			WechatPayment:    core.Money{Cents: r.WechatPaymentCents},
			RefundBalance:    core.Money{Cents: r.RefundBalanceCents},
			TournamentType:   core.TournamentType(r.TournamentType),
			IsCertified:      r.IsCertified,
			MedalCount:       r.MedalCount,
			MedalPrice:       core.Money{Cents: r.MedalPriceCents},
		},
		Fees: core.Fees{
			ProcessingFee:    core.Money{Cents: r.ProcessingFeeCents},
			WechatFee:        core.Money{Cents: r.WechatFeeCents},
			CertificationFee: core.Money{Cents: r.CertificationFeeCents},
			TotalFee:         core.Money{Cents: r.TotalFeeCents},
			MedalCost:        core.Money{Cents: r.MedalCostCents},
			HostSettlement:   core.Money{Cents: r.HostSettlementCents},
			TotalIncome:      core.Money{Cents: r.TotalIncomeCents},
		},
		IsSettled: r.IsSettled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func classify(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrNotFound
	}
	return core.Unavailable(op, err)
}
