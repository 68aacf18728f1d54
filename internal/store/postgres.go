package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/regiq/regiq/internal/errors"
	"github.com/regiq/regiq/internal/models"
)

// PostgresStore persists alerts and analysis results in PostgreSQL.
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

const alertColumns = `id, dedup_key, title, source, urgency, summary, published_date,
		external_url, full_content, agency, region, category, date_suspect, created_at, updated_at`

// InsertAlert inserts an alert, relying on the dedup_key unique constraint
// to suppress duplicates that race past the pre-insert check. It reports
// whether a row was actually written.
func (s *PostgresStore) InsertAlert(ctx context.Context, alert models.Alert) (bool, error) {
	affected, err := s.db.Exec(ctx, `
		INSERT INTO alerts (
			id, dedup_key, title, source, urgency, summary, published_date,
			external_url, full_content, agency, region, category, date_suspect
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (dedup_key) DO NOTHING`,
		alert.ID, alert.DedupKey, alert.Title, alert.Source, alert.Urgency,
		alert.Summary, alert.PublishedDate, alert.ExternalURL, alert.FullContent,
		alert.Agency, alert.Region, alert.Category, alert.DateSuspect,
	)
	if err != nil {
		return false, &apperrors.StoreError{Operation: "insert_alert", Err: err}
	}
	return affected > 0, nil
}

// HasRecentAlert reports whether an alert with the same title and source
// was published at or after the given cutoff.
func (s *PostgresStore) HasRecentAlert(ctx context.Context, title, source string, since time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE title = $1 AND source = $2 AND published_date >= $3
		)`, title, source, since).Scan(&exists)
	if err != nil {
		return false, &apperrors.StoreError{Operation: "has_recent_alert", Err: err}
	}
	return exists, nil
}

// QueryAlerts returns alerts matching the query, newest first.
func (s *PostgresStore) QueryAlerts(ctx context.Context, q models.AlertQuery) ([]models.Alert, error) {
	sql := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	args := []any{}
	idx := 1

	addFilter := func(clause string, value any) {
		sql += fmt.Sprintf(" AND "+clause, idx)
		args = append(args, value)
		idx++
	}

	if len(q.IDs) > 0 {
		addFilter("id = ANY($%d)", q.IDs)
	}
	if len(q.Sources) > 0 {
		addFilter("source = ANY($%d)", q.Sources)
	}
	if len(q.Agencies) > 0 {
		addFilter("agency = ANY($%d)", q.Agencies)
	}
	if len(q.Urgencies) > 0 {
		addFilter("urgency = ANY($%d)", q.Urgencies)
	}
	if len(q.Categories) > 0 {
		addFilter("category = ANY($%d)", q.Categories)
	}
	if !q.Since.IsZero() {
		addFilter("published_date >= $%d", q.Since)
	}
	if !q.Until.IsZero() {
		addFilter("published_date <= $%d", q.Until)
	}

	sql += " ORDER BY published_date DESC"
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, q.Limit)
		idx++
	}
	if q.Offset > 0 {
		sql += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, q.Offset)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, &apperrors.StoreError{Operation: "query_alerts", Err: err}
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// GetAlert returns a single alert by ID, or ErrNotFound.
func (s *PostgresStore) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	row := s.db.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	alert, err := scanAlert(row)
	if err == pgx.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, &apperrors.StoreError{Operation: "get_alert", Err: err}
	}
	return alert, nil
}

// ListAlertsForAnalysis returns the alerts selected for gap analysis:
// the named IDs when given, otherwise the most recent alerts up to limit
// when analyzeAll is set.
func (s *PostgresStore) ListAlertsForAnalysis(ctx context.Context, ids []string, analyzeAll bool, limit int) ([]models.Alert, error) {
	if len(ids) > 0 {
		return s.QueryAlerts(ctx, models.AlertQuery{IDs: ids})
	}
	if !analyzeAll {
		return nil, nil
	}
	return s.QueryAlerts(ctx, models.AlertQuery{Limit: limit})
}

// StartSyncLog opens a sync log row for an agency and returns its ID.
func (s *PostgresStore) StartSyncLog(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO alert_sync_logs (id, source, started_at, status)
		VALUES ($1, $2, NOW(), $3)`,
		id, source, models.SyncStatusRunning,
	)
	if err != nil {
		return "", &apperrors.StoreError{Operation: "start_sync_log", Err: err}
	}
	return id, nil
}

// FinishSyncLog records the outcome of a sync run.
func (s *PostgresStore) FinishSyncLog(ctx context.Context, log models.SyncLog) error {
	results, err := json.Marshal(log.Results)
	if err != nil {
		return &apperrors.StoreError{Operation: "finish_sync_log", Err: err}
	}
	_, err = s.db.Exec(ctx, `
		UPDATE alert_sync_logs
		SET finished_at = $2, status = $3, fetched = $4, inserted = $5,
			skipped = $6, errors = $7, results = $8
		WHERE id = $1`,
		log.ID, log.FinishedAt, log.Status, log.Fetched, log.Inserted,
		log.Skipped, log.Errors, results,
	)
	if err != nil {
		return &apperrors.StoreError{Operation: "finish_sync_log", Err: err}
	}
	return nil
}

// UpsertDataFreshness records the latest fetch attempt for a source.
// A failed attempt never clears the last successful fetch timestamp.
func (s *PostgresStore) UpsertDataFreshness(ctx context.Context, f models.DataFreshness) error {
	var lastSuccess *time.Time
	if !f.LastSuccessfulFetch.IsZero() {
		lastSuccess = &f.LastSuccessfulFetch
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO data_freshness (
			source_name, last_successful_fetch, last_attempt, status,
			records_fetched, error_message
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_name) DO UPDATE SET
			last_attempt = EXCLUDED.last_attempt,
			status = EXCLUDED.status,
			records_fetched = EXCLUDED.records_fetched,
			error_message = EXCLUDED.error_message,
			last_successful_fetch = CASE
				WHEN EXCLUDED.status = 'success' THEN EXCLUDED.last_successful_fetch
				ELSE data_freshness.last_successful_fetch
			END`,
		f.SourceName, lastSuccess, f.LastAttempt, f.Status,
		f.RecordsFetched, f.ErrorMessage,
	)
	if err != nil {
		return &apperrors.StoreError{Operation: "upsert_data_freshness", Err: err}
	}
	return nil
}

// GetDataFreshness returns the freshness row for every known source.
func (s *PostgresStore) GetDataFreshness(ctx context.Context) ([]models.DataFreshness, error) {
	rows, err := s.db.Query(ctx, `
		SELECT source_name, last_successful_fetch, last_attempt, status,
			records_fetched, error_message
		FROM data_freshness ORDER BY source_name`)
	if err != nil {
		return nil, &apperrors.StoreError{Operation: "get_data_freshness", Err: err}
	}
	defer rows.Close()

	var result []models.DataFreshness
	for rows.Next() {
		var f models.DataFreshness
		var lastSuccess *time.Time
		if err := rows.Scan(&f.SourceName, &lastSuccess, &f.LastAttempt,
			&f.Status, &f.RecordsFetched, &f.ErrorMessage); err != nil {
			return nil, &apperrors.StoreError{Operation: "get_data_freshness", Err: err}
		}
		if lastSuccess != nil {
			f.LastSuccessfulFetch = *lastSuccess
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// UpsertProcessFailurePattern stores a process failure finding, replacing
// any previous finding for the same alert.
func (s *PostgresStore) UpsertProcessFailurePattern(ctx context.Context, p models.ProcessFailurePattern) error {
	rootCause, err := json.Marshal(p.RootCause)
	if err != nil {
		return &apperrors.StoreError{Operation: "upsert_process_failure", Err: err}
	}
	remediation, err := json.Marshal(p.Remediation)
	if err != nil {
		return &apperrors.StoreError{Operation: "upsert_process_failure", Err: err}
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO process_failure_patterns (
			alert_id, failure_type, severity, affected_systems,
			root_cause, remediation, confidence, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (alert_id) DO UPDATE SET
			failure_type = EXCLUDED.failure_type,
			severity = EXCLUDED.severity,
			affected_systems = EXCLUDED.affected_systems,
			root_cause = EXCLUDED.root_cause,
			remediation = EXCLUDED.remediation,
			confidence = EXCLUDED.confidence,
			updated_at = NOW()`,
		p.AlertID, p.FailureType, p.Severity, p.AffectedSystems,
		rootCause, remediation, p.Confidence,
	)
	if err != nil {
		return &apperrors.StoreError{Operation: "upsert_process_failure", Err: err}
	}
	return nil
}

// UpsertImportComplianceGap stores an import compliance finding, replacing
// any previous finding for the same alert.
func (s *PostgresStore) UpsertImportComplianceGap(ctx context.Context, g models.ImportComplianceGap) error {
	details, err := json.Marshal(g.Details)
	if err != nil {
		return &apperrors.StoreError{Operation: "upsert_import_gap", Err: err}
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO import_compliance_gaps (
			alert_id, gap_type, risk_level, missed_requirements, product_type,
			origin_country, importer, remediation_timeline, details, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (alert_id) DO UPDATE SET
			gap_type = EXCLUDED.gap_type,
			risk_level = EXCLUDED.risk_level,
			missed_requirements = EXCLUDED.missed_requirements,
			product_type = EXCLUDED.product_type,
			origin_country = EXCLUDED.origin_country,
			importer = EXCLUDED.importer,
			remediation_timeline = EXCLUDED.remediation_timeline,
			details = EXCLUDED.details,
			updated_at = NOW()`,
		g.AlertID, g.GapType, g.RiskLevel, g.MissedRequirements, g.ProductType,
		g.OriginCountry, g.Importer, g.RemediationTimeline, details,
	)
	if err != nil {
		return &apperrors.StoreError{Operation: "upsert_import_gap", Err: err}
	}
	return nil
}

// UpsertGapIndicator stores a system-wide indicator keyed by its type.
func (s *PostgresStore) UpsertGapIndicator(ctx context.Context, ind models.RegulatoryGapIndicator) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO regulatory_gap_indicators (
			indicator_type, risk_score, trend, affected_areas,
			contributing_alerts, description, recommended_actions, priority, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (indicator_type) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			trend = EXCLUDED.trend,
			affected_areas = EXCLUDED.affected_areas,
			contributing_alerts = EXCLUDED.contributing_alerts,
			description = EXCLUDED.description,
			recommended_actions = EXCLUDED.recommended_actions,
			priority = EXCLUDED.priority,
			updated_at = NOW()`,
		ind.IndicatorType, ind.RiskScore, ind.Trend, ind.AffectedAreas,
		ind.ContributingAlerts, ind.Description, ind.RecommendedActions, ind.Priority,
	)
	if err != nil {
		return &apperrors.StoreError{Operation: "upsert_gap_indicator", Err: err}
	}
	return nil
}

// ListGapIndicators returns all indicators, highest risk first.
func (s *PostgresStore) ListGapIndicators(ctx context.Context) ([]models.RegulatoryGapIndicator, error) {
	rows, err := s.db.Query(ctx, `
		SELECT indicator_type, risk_score, trend, affected_areas,
			contributing_alerts, description, recommended_actions, priority
		FROM regulatory_gap_indicators ORDER BY risk_score DESC`)
	if err != nil {
		return nil, &apperrors.StoreError{Operation: "list_gap_indicators", Err: err}
	}
	defer rows.Close()

	var result []models.RegulatoryGapIndicator
	for rows.Next() {
		var ind models.RegulatoryGapIndicator
		if err := rows.Scan(&ind.IndicatorType, &ind.RiskScore, &ind.Trend,
			&ind.AffectedAreas, &ind.ContributingAlerts, &ind.Description,
			&ind.RecommendedActions, &ind.Priority); err != nil {
			return nil, &apperrors.StoreError{Operation: "list_gap_indicators", Err: err}
		}
		result = append(result, ind)
	}
	return result, rows.Err()
}

// Health checks database connectivity.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func scanAlerts(rows pgx.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, &apperrors.StoreError{Operation: "scan_alert", Err: err}
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(&a.ID, &a.DedupKey, &a.Title, &a.Source, &a.Urgency,
		&a.Summary, &a.PublishedDate, &a.ExternalURL, &a.FullContent,
		&a.Agency, &a.Region, &a.Category, &a.DateSuspect, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
