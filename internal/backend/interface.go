package backend

import (
	"context"

	"saishi/internal/services"
	"saishi/internal/sheets"
	"saishi/internal/store"
)

type CleanupFunc func() error

// BackendResult is a ready store plus the optional pieces wired around it.
type BackendResult struct {
	Store store.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.SyncPublisher
	// Checks are probed by /readyz, keyed by dependency name.
	Checks  map[string]store.Pinger
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	CreateMirror(ctx context.Context, config Config) (sheets.RecordMirror, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresDSN  string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
