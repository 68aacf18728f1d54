package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/regiq/regiq/internal/logger"
	"github.com/regiq/regiq/internal/models"
)

// Database is the subset of database operations the store needs.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Health(ctx context.Context) error
	IsConfigured() bool
}

// Store is the persistence interface for alerts, sync bookkeeping,
// and gap analysis results.
type Store interface {
	InsertAlert(ctx context.Context, alert models.Alert) (bool, error)
	HasRecentAlert(ctx context.Context, title, source string, since time.Time) (bool, error)
	QueryAlerts(ctx context.Context, q models.AlertQuery) ([]models.Alert, error)
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListAlertsForAnalysis(ctx context.Context, ids []string, analyzeAll bool, limit int) ([]models.Alert, error)

	StartSyncLog(ctx context.Context, source string) (string, error)
	FinishSyncLog(ctx context.Context, log models.SyncLog) error
	UpsertDataFreshness(ctx context.Context, f models.DataFreshness) error
	GetDataFreshness(ctx context.Context) ([]models.DataFreshness, error)

	UpsertProcessFailurePattern(ctx context.Context, p models.ProcessFailurePattern) error
	UpsertImportComplianceGap(ctx context.Context, g models.ImportComplianceGap) error
	UpsertGapIndicator(ctx context.Context, ind models.RegulatoryGapIndicator) error
	ListGapIndicators(ctx context.Context) ([]models.RegulatoryGapIndicator, error)

	Health(ctx context.Context) error
}

// New returns a Postgres-backed store when a database is configured,
// otherwise an in-memory store suitable for local development and tests.
func New(db Database) Store {
	if db != nil && db.IsConfigured() {
		logger.Info("Using PostgreSQL store")
		return NewPostgresStore(db)
	}
	logger.Warn("DATABASE_URL not set, using in-memory store")
	return NewMemoryStore()
}
