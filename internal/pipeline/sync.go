package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/regiq/regiq/config"
	"github.com/regiq/regiq/internal/classifier"
	apperrors "github.com/regiq/regiq/internal/errors"
	"github.com/regiq/regiq/internal/feed"
	"github.com/regiq/regiq/internal/logger"
	"github.com/regiq/regiq/internal/metrics"
	"github.com/regiq/regiq/internal/models"
)

// Feed statuses reported per feed within a sync run
const (
	FeedStatusSuccess = "success"
	FeedStatusError   = "error"
	FeedStatusLocked  = "locked"
)

// Fetcher retrieves a raw feed document
type Fetcher interface {
	Fetch(ctx context.Context, fc config.FeedConfig) (body []byte, contentType string, err error)
}

// Parser extracts items from a raw feed document
type Parser interface {
	Parse(body []byte, contentType string) ([]feed.Item, error)
}

// Store is the persistence surface the sync pipeline needs
type Store interface {
	HasRecentAlert(ctx context.Context, title, source string, since time.Time) (bool, error)
	InsertAlert(ctx context.Context, alert models.Alert) (inserted bool, err error)
	StartSyncLog(ctx context.Context, source string) (string, error)
	FinishSyncLog(ctx context.Context, log models.SyncLog) error
	UpsertDataFreshness(ctx context.Context, fresh models.DataFreshness) error
}

// Leaser serializes concurrent syncs of the same source
type Leaser interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error)
}

// SyncService drives the ingestion pipeline: fetch, parse, filter,
// normalize, classify, deduplicate, store. One invocation processes its
// feeds sequentially with a fixed pause between them.
type SyncService struct {
	store      Store
	leases     Leaser
	fetcher    Fetcher
	parser     Parser
	classifier *classifier.Classifier
	normalizer *Normalizer
	feeds      []config.FeedConfig
	cfg        config.SyncConfig
	sem        *semaphore.Weighted
	now        func() time.Time
}

// NewSyncService creates the sync orchestrator over an explicit feed
// registry; nothing in the pipeline consumes the registry as global state.
func NewSyncService(store Store, leases Leaser, fetcher Fetcher, parser Parser, feeds []config.FeedConfig, cfg config.SyncConfig) *SyncService {
	c := classifier.New()
	return &SyncService{
		store:      store,
		leases:     leases,
		fetcher:    fetcher,
		parser:     parser,
		classifier: c,
		normalizer: NewNormalizer(c),
		feeds:      feeds,
		cfg:        cfg,
		sem:        semaphore.NewWeighted(int64(cfg.MaxConcurrentSyncs)),
		now:        time.Now,
	}
}

// SyncAll runs the pipeline for every configured feed
func (s *SyncService) SyncAll(ctx context.Context) (models.SyncReport, error) {
	return s.run(ctx, s.feeds, true)
}

// SyncAgency runs the pipeline for one agency's feeds
func (s *SyncService) SyncAgency(ctx context.Context, agency string) (models.SyncReport, error) {
	feeds := config.FeedsForAgency(s.feeds, agency)
	if len(feeds) == 0 {
		return models.SyncReport{}, fmt.Errorf("unknown agency %q: %w", agency, apperrors.ErrInvalidInput)
	}
	return s.run(ctx, feeds, true)
}

// TestFeeds checks feed reachability and parseability without persisting
// anything. An empty agency tests every configured feed.
func (s *SyncService) TestFeeds(ctx context.Context, agency string) (models.SyncReport, error) {
	feeds := s.feeds
	if agency != "" {
		feeds = config.FeedsForAgency(s.feeds, agency)
		if len(feeds) == 0 {
			return models.SyncReport{}, fmt.Errorf("unknown agency %q: %w", agency, apperrors.ErrInvalidInput)
		}
	}
	return s.run(ctx, feeds, false)
}

// Run drives scheduled syncs until the context is cancelled
func (s *SyncService) Run(ctx context.Context) error {
	logger.Info("Starting sync scheduler", "interval", s.cfg.Interval, "feeds", len(s.feeds))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// initial immediate run
	if _, err := s.SyncAll(ctx); err != nil {
		logger.Error("Initial sync failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Sync scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SyncAll(ctx); err != nil {
				logger.Error("Scheduled sync failed", "error", err)
			}
		}
	}
}

// run processes the given feeds grouped by agency: one sync log per
// agency, one freshness row per source, a fixed pause between feeds.
func (s *SyncService) run(ctx context.Context, feeds []config.FeedConfig, persist bool) (models.SyncReport, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return models.SyncReport{}, fmt.Errorf("acquire sync slot: %w", err)
	}
	defer s.sem.Release(1)

	start := s.now()
	pace := rate.NewLimiter(rate.Every(s.cfg.FeedDelay), 1)

	report := models.SyncReport{Timestamp: start.UTC()}
	succeeded := 0

	for _, group := range groupByAgency(feeds) {
		agencyStart := s.now()

		var logID string
		if persist {
			id, err := s.store.StartSyncLog(ctx, group.agency)
			if err != nil {
				logger.Error("Failed to start sync log", "agency", group.agency, "error", err)
			}
			logID = id
		}

		var agencyErrs []string
		fetched, inserted, skipped, feedsOK := 0, 0, 0, 0

		for _, fc := range group.feeds {
			if err := pace.Wait(ctx); err != nil {
				// the run is aborting mid-agency; close the open log so
				// no row is left in running state
				msg := fmt.Sprintf("%s: feed pacing: %s", fc.Source, err)
				agencyErrs = append(agencyErrs, msg)
				report.Errors = append(report.Errors, msg)
				if persist && logID != "" {
					s.finishAgencyLog(ctx, models.SyncLog{
						ID:         logID,
						Source:     group.agency,
						FinishedAt: s.now().UTC(),
						Status:     models.SyncStatusError,
						Fetched:    fetched,
						Inserted:   inserted,
						Skipped:    skipped,
						Errors:     agencyErrs,
						Results:    map[string]any{"feeds": len(group.feeds), "feeds_succeeded": feedsOK},
					})
				}
				return report, fmt.Errorf("feed pacing: %w", err)
			}

			fr := s.syncFeed(ctx, fc, persist)
			report.FeedResults = append(report.FeedResults, fr)
			report.TotalFetched += fr.Fetched
			report.TotalProcessed += fr.Processed
			report.TotalSkipped += fr.Skipped

			fetched += fr.Fetched
			inserted += fr.Processed
			skipped += fr.Skipped

			if fr.Status == FeedStatusSuccess {
				feedsOK++
				succeeded++
			}
			if fr.Error != "" {
				msg := fmt.Sprintf("%s: %s", fc.Source, fr.Error)
				agencyErrs = append(agencyErrs, msg)
				report.Errors = append(report.Errors, msg)
			}
		}

		// terminal state is error only when every feed for the agency failed
		status := models.SyncStatusSuccess
		if feedsOK == 0 {
			status = models.SyncStatusError
		}

		if persist && logID != "" {
			s.finishAgencyLog(ctx, models.SyncLog{
				ID:         logID,
				Source:     group.agency,
				FinishedAt: s.now().UTC(),
				Status:     status,
				Fetched:    fetched,
				Inserted:   inserted,
				Skipped:    skipped,
				Errors:     agencyErrs,
				Results:    map[string]any{"feeds": len(group.feeds), "feeds_succeeded": feedsOK},
			})
		}

		metrics.RecordSyncRun(group.agency, s.now().Sub(agencyStart))
	}

	report.ProcessingTimeMS = s.now().Sub(start).Milliseconds()
	report.Success = succeeded > 0
	report.Message = fmt.Sprintf("processed %d feeds, %d succeeded", len(feeds), succeeded)

	logger.Info("Sync run finished",
		"feeds", len(feeds),
		"succeeded", succeeded,
		"fetched", report.TotalFetched,
		"processed", report.TotalProcessed,
		"skipped", report.TotalSkipped,
		"duration_ms", report.ProcessingTimeMS,
	)

	return report, nil
}

// finishAgencyLog moves an agency's sync log to its terminal state. The
// run context may already be cancelled when a run aborts mid-agency, so
// the write uses a detached context with its own timeout.
func (s *SyncService) finishAgencyLog(ctx context.Context, log models.SyncLog) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.store.FinishSyncLog(ctx, log); err != nil {
		logger.Error("Failed to finish sync log", "agency", log.Source, "error", err)
	}
}

// syncFeed runs the per-feed stage chain. Item-level problems (irrelevant,
// duplicate, persistence failure) are counted as skipped and never abort
// the feed; fetch or parse failures fail the whole feed.
func (s *SyncService) syncFeed(ctx context.Context, fc config.FeedConfig, persist bool) models.FeedResult {
	fr := models.FeedResult{Agency: fc.Agency, Source: fc.Source}

	if persist {
		release, acquired, err := s.leases.Acquire(ctx, fc.Source, s.cfg.LeaseTTL)
		if err != nil {
			// lease backend failure degrades to unserialized sync; the
			// dedup key constraint still prevents duplicate rows
			logger.Warn("Lease acquisition failed, proceeding without lease", "source", fc.Source, "error", err)
		} else if !acquired {
			fr.Status = FeedStatusLocked
			fr.Error = apperrors.ErrSyncInProgress.Error()
			return fr
		} else {
			defer release()
		}
	}

	body, contentType, err := s.fetcher.Fetch(ctx, fc)
	if err != nil {
		fr.Status = FeedStatusError
		fr.Error = err.Error()
		s.recordFreshness(ctx, fc, fr, persist)
		return fr
	}

	items, err := s.parser.Parse(body, contentType)
	if err != nil {
		fr.Status = FeedStatusError
		fr.Error = err.Error()
		s.recordFreshness(ctx, fc, fr, persist)
		return fr
	}

	fr.Fetched = len(items)

	for _, item := range items {
		if !s.classifier.Relevant(item, fc.Keywords) {
			fr.Skipped++
			continue
		}

		alert := s.normalizer.Normalize(item, fc)

		if !persist {
			fr.Processed++
			continue
		}

		since := s.now().Add(-s.cfg.DedupWindow)
		exists, err := s.store.HasRecentAlert(ctx, alert.Title, alert.Source, since)
		if err != nil {
			logger.Error("Duplicate check failed", "source", fc.Source, "title", alert.Title, "error", err)
			metrics.RecordAlertProcessed(fc.Source, "store_error")
			fr.Skipped++
			continue
		}
		if exists {
			metrics.RecordAlertProcessed(fc.Source, "duplicate")
			fr.Skipped++
			continue
		}

		inserted, err := s.store.InsertAlert(ctx, alert)
		if err != nil {
			logger.Error("Alert insert failed", "source", fc.Source, "title", alert.Title, "error", err)
			metrics.RecordAlertProcessed(fc.Source, "store_error")
			fr.Skipped++
			continue
		}
		if !inserted {
			// dedup key conflict from a concurrent writer
			metrics.RecordAlertProcessed(fc.Source, "duplicate")
			fr.Skipped++
			continue
		}

		metrics.RecordAlertProcessed(fc.Source, "inserted")
		fr.Processed++
	}

	fr.Status = FeedStatusSuccess
	s.recordFreshness(ctx, fc, fr, persist)
	return fr
}

// recordFreshness upserts the rolling last-known state for one source
func (s *SyncService) recordFreshness(ctx context.Context, fc config.FeedConfig, fr models.FeedResult, persist bool) {
	if !persist {
		return
	}

	now := s.now().UTC()
	fresh := models.DataFreshness{
		SourceName:     fc.Source,
		LastAttempt:    now,
		Status:         fr.Status,
		RecordsFetched: fr.Fetched,
		ErrorMessage:   fr.Error,
	}
	if fr.Status == FeedStatusSuccess {
		fresh.LastSuccessfulFetch = now
	}

	if err := s.store.UpsertDataFreshness(ctx, fresh); err != nil {
		logger.Error("Freshness upsert failed", "source", fc.Source, "error", err)
	}
}

type agencyGroup struct {
	agency string
	feeds  []config.FeedConfig
}

// groupByAgency preserves registry order while grouping feeds per agency
func groupByAgency(feeds []config.FeedConfig) []agencyGroup {
	var groups []agencyGroup
	index := make(map[string]int)
	for _, fc := range feeds {
		i, ok := index[fc.Agency]
		if !ok {
			i = len(groups)
			index[fc.Agency] = i
			groups = append(groups, agencyGroup{agency: fc.Agency})
		}
		groups[i].feeds = append(groups[i].feeds, fc)
	}
	return groups
}
