package analytics

import (
	"time"

	"dkit-partners/src/helpers"
	"dkit-partners/src/interfaces"
	"dkit-partners/src/logger"
	"dkit-partners/src/models"
)

// -----------------------------------------------------------------------------
// Analytics Service
//
// Owns the backfill engine and the project-scoped read paths. Every metrics
// read runs the backfill first so consumers never observe gaps; the store's
// conflict-ignoring insert keeps concurrent backfills idempotent.
// -----------------------------------------------------------------------------

type Service struct {
	DB     interfaces.IDatabase
	Synth  *Synthesizer
	Logger *logger.Logger

	backfillDays   int
	btcPrice       float64
	defaultTxLimit int

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewService(db interfaces.IDatabase, synth *Synthesizer, log *logger.Logger, cfg models.MAnalyticsConfig) *Service {
	return &Service{
		DB:             db,
		Synth:          synth,
		Logger:         log,
		backfillDays:   cfg.BackfillDays,
		btcPrice:       cfg.BtcPriceUsd,
		defaultTxLimit: cfg.DefaultTxLimit,
		now:            time.Now,
	}
}

// -----------------------------------------------------------------------------
// Backfill Engine
// -----------------------------------------------------------------------------

// EnsureBackfill guarantees one stored point per hour for the project from
// the trailing horizon up to and including the current hour floor. Calling it
// again within the same hour inserts nothing.
func (s *Service) EnsureBackfill(projectID string) error {
	target := s.now().UTC().Truncate(time.Hour)

	latest, found, err := s.DB.GetLatestMetricTime(projectID)
	if err != nil {
		return helpers.NewDatabaseError("failed to read latest metric point", err)
	}

	var next time.Time
	if found {
		next = latest.UTC().Truncate(time.Hour).Add(time.Hour)
	} else {
		next = target.AddDate(0, 0, -s.backfillDays)
	}

	var points []models.MMetricPoint
	for !next.After(target) {
		points = append(points, s.Synth.MetricPoint(projectID, next))
		next = next.Add(time.Hour)
	}

	if len(points) == 0 {
		return nil
	}

	if err := s.DB.InsertMetricPoints(points); err != nil {
		return helpers.NewDatabaseError("failed to insert backfilled metric points", err)
	}

	s.Logger.Debug("Backfilled %d metric points for project %s", len(points), projectID)
	return nil
}

// -----------------------------------------------------------------------------
// Range Query
// -----------------------------------------------------------------------------

// QueryRange returns the project's points bounded by the optional inclusive
// [from, to] window, ascending by time. The backfill runs first.
func (s *Service) QueryRange(projectID string, from, to *time.Time) ([]models.MMetricPoint, error) {
	if err := s.EnsureBackfill(projectID); err != nil {
		return nil, err
	}

	points, err := s.DB.GetMetricPoints(projectID, from, to)
	if err != nil {
		return nil, helpers.NewDatabaseError("failed to read metric points", err)
	}

	return points, nil
}

// -----------------------------------------------------------------------------

// Report runs the range query and reduces the result into series + totals.
func (s *Service) Report(projectID string, from, to *time.Time) (models.MMetricsResponse, error) {
	points, err := s.QueryRange(projectID, from, to)
	if err != nil {
		return models.MMetricsResponse{}, err
	}

	return BuildReport(points, s.now().UTC(), s.btcPrice), nil
}

// -----------------------------------------------------------------------------
// Transaction log
// -----------------------------------------------------------------------------

// Transactions returns up to limit formatted transactions, newest first.
// A non-positive limit selects the configured default.
func (s *Service) Transactions(projectID string, limit int) ([]models.MTransactionView, error) {
	if limit <= 0 {
		limit = s.defaultTxLimit
	}

	txs, err := s.DB.GetTransactions(projectID, limit)
	if err != nil {
		return nil, helpers.NewDatabaseError("failed to read transactions", err)
	}

	views := make([]models.MTransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, FormatTransaction(tx))
	}

	return views, nil
}

// -----------------------------------------------------------------------------
// Project seeding
// -----------------------------------------------------------------------------

// SeedProject populates a freshly created project: the full metric backfill
// plus the initial synthetic swap log.
func (s *Service) SeedProject(projectID string) error {
	if err := s.EnsureBackfill(projectID); err != nil {
		return err
	}

	txs := s.Synth.Transactions(projectID, s.now().UTC())
	if err := s.DB.InsertTransactions(txs); err != nil {
		return helpers.NewDatabaseError("failed to seed transactions", err)
	}

	s.Logger.Info("Seeded project %s with %d transactions", projectID, len(txs))
	return nil
}
