package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"saishi/internal/core"
	"saishi/internal/store"
)

// dryRun builds statements without a server; nothing is sent.
func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		DSN: "host=localhost user=saishi dbname=saishi sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestSelectScopeSQL(t *testing.T) {
	db := dryRun(t)
	from := core.NewDate(2025, 3, 1)
	q := store.Query{
		Filter: store.Filter{DateFrom: &from, NameContains: "杯"},
		Sort:   store.SortCreatedAt,
		Desc:   true,
		Skip:   20,
		Limit:  10,
	}
	stmt := db.Scopes(selectScope(q)).Find(&[]tournamentRow{}).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `FROM "tournaments"`)
	assert.Contains(t, sql, "event_date >= $1")
	assert.Contains(t, sql, "strpos(tournament_name, $2) > 0")
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
	require.NotEmpty(t, stmt.Vars)
	assert.Equal(t, from.Time, stmt.Vars[0])
}

func TestSelectScopeSortsNamesByByteOrder(t *testing.T) {
	db := dryRun(t)
	stmt := db.Scopes(selectScope(store.Query{Sort: store.SortName})).Find(&[]tournamentRow{}).Statement
	assert.Contains(t, stmt.SQL.String(), `ORDER BY tournament_name COLLATE "C" ASC, id ASC`)
}

func TestRowConversion(t *testing.T) {
	created := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	rec := core.NewTournament(core.TournamentInput{
		TournamentName:   "协会公开赛",
		EventDate:        core.NewDate(2025, 5, 3),
		ParticipantCount: 120,
		TotalRevenue:     core.Yuan(3600),
		TournamentType:   core.AssociationOrganization,
		IsCertified:      true,
		MedalCount:       15,
		MedalPrice:       core.Yuan(18),
	}, created)
	rec.ID = "0b5f3c1e-7a4d-4a63-9d56-3f1f7f0e2a11"
	rec.IsSettled = true

	assert.Equal(t, rec, fromRow(toRow(rec)))
}
