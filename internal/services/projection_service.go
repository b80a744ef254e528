package services

import (
	"context"
	"runtime"
	"time"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/repositories"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProjectionService feeds committed activity events to the search index and
// keeps the status gauges current
type ProjectionService struct {
	events    repositories.EventRepository
	lots      repositories.LotRepository
	indexer   Indexer
	metrics   *metrics.Metrics
	batchSize int
}

// NewProjectionService creates a projector; a nil indexer skips indexing
func NewProjectionService(db *gorm.DB, indexer Indexer, m *metrics.Metrics, batchSize int) *ProjectionService {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &ProjectionService{
		events:    repositories.NewEventRepository(db),
		lots:      repositories.NewLotRepository(db),
		indexer:   indexer,
		metrics:   m,
		batchSize: batchSize,
	}
}

// IndexPending indexes one batch of unindexed events and marks the successful
// ones. Failed events stay pending for the next run.
func (s *ProjectionService) IndexPending(ctx context.Context) (int, error) {
	if s.indexer == nil {
		return 0, nil
	}

	pending, err := s.events.ListUnindexed(ctx, s.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list unindexed events")
	}
	if len(pending) == 0 {
		return 0, nil
	}

	indexed := make([]string, 0, len(pending))
	var failed int
	for _, event := range pending {
		if err := s.indexer.IndexActivity(ctx, event); err != nil {
			failed++
			log.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("Failed to index activity event")
			continue
		}
		indexed = append(indexed, event.ID)
	}

	if err := s.events.MarkIndexed(ctx, indexed); err != nil {
		return 0, errors.Wrap(err, "failed to mark events as indexed")
	}

	s.metrics.IncrementCounterBy(metrics.CounterEventsIndexed, int64(len(indexed)))
	log.Info().
		Int("indexed", len(indexed)).
		Int("failed", failed).
		Msg("Activity events indexed")
	return len(indexed), nil
}

// RefreshGauges recomputes lot status counts and the indexing backlog
func (s *ProjectionService) RefreshGauges(ctx context.Context) error {
	counts, err := s.lots.CountByStatus(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count lots by status")
	}
	// statuses absent from counts have no lots left
	for _, status := range domain.LotStatuses() {
		s.metrics.SetGauge(metrics.GaugeLotsPrefix+string(status), counts[status])
	}

	backlog, err := s.events.CountUnindexed(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count unindexed events")
	}
	s.metrics.SetGauge(metrics.GaugePendingIndex, backlog)
	s.metrics.SetGauge(metrics.GaugeGoroutines, int64(runtime.NumGoroutine()))
	return nil
}

// Reconcile runs one projection pass; it is the worker's scheduled job
func (s *ProjectionService) Reconcile(ctx context.Context) error {
	started := time.Now()
	defer func() { s.metrics.RecordTimer(metrics.TimerReconcileRun, time.Since(started)) }()

	if _, err := s.IndexPending(ctx); err != nil {
		s.metrics.RecordResult(metrics.TimerReconcileRun, err)
		return err
	}
	err := s.RefreshGauges(ctx)
	s.metrics.RecordResult(metrics.TimerReconcileRun, err)
	return err
}
