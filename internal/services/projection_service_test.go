package services

import (
	"context"
	"errors"
	"testing"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) IndexActivity(ctx context.Context, event models.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestReconcileIndexesPendingEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.lots.Create(ctx, lotInput("11111111", domain.WorkModeGeneral, alice, []string{"100000001"}, 1))
	require.NoError(t, err)
	_, err = env.lots.Create(ctx, lotInput("22222222", domain.WorkModeGeneral, alice, []string{"200000001"}, 1))
	require.NoError(t, err)

	indexer := &mockIndexer{}
	indexer.On("IndexActivity", mock.Anything, mock.MatchedBy(func(e models.ActivityEvent) bool {
		return e.AggregateID == "11111111"
	})).Return(nil)
	indexer.On("IndexActivity", mock.Anything, mock.MatchedBy(func(e models.ActivityEvent) bool {
		return e.AggregateID == "22222222"
	})).Return(errors.New("cluster unavailable")).Once()

	projector := NewProjectionService(env.db, indexer, env.metrics, 10)
	require.NoError(t, projector.Reconcile(ctx))

	assert.Equal(t, int64(1), env.metrics.GetCounter(metrics.CounterEventsIndexed))
	assert.Equal(t, int64(1), env.count(t, &models.ActivityEvent{}, "indexed = ?", false))
	assert.Equal(t, int64(2), env.metrics.GetGauges()[metrics.GaugeLotsPrefix+string(domain.LotDraft)])
	assert.Equal(t, int64(1), env.metrics.GetGauges()[metrics.GaugePendingIndex])

	// the failed event is retried on the next run
	indexer.On("IndexActivity", mock.Anything, mock.Anything).Return(nil)
	n, err := projector.IndexPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(0), env.count(t, &models.ActivityEvent{}, "indexed = ?", false))
}

func TestRefreshGaugesClearsEmptiedStatuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	projector := NewProjectionService(env.db, nil, env.metrics, 0)
	draft := metrics.GaugeLotsPrefix + string(domain.LotDraft)
	inProgress := metrics.GaugeLotsPrefix + string(domain.LotInProgress)

	_, err := env.lots.Create(ctx, lotInput("11111111", domain.WorkModeGeneral, alice, []string{"100000001"}, 1))
	require.NoError(t, err)
	require.NoError(t, projector.RefreshGauges(ctx))
	assert.Equal(t, int64(1), env.metrics.GetGauges()[draft])

	_, err = env.lots.Start(ctx, "11111111")
	require.NoError(t, err)
	require.NoError(t, projector.RefreshGauges(ctx))

	gauges := env.metrics.GetGauges()
	assert.Equal(t, int64(0), gauges[draft])
	assert.Equal(t, int64(1), gauges[inProgress])
	assert.Contains(t, gauges, metrics.GaugeLotsPrefix+string(domain.LotDone))
}

func TestIndexPendingWithoutIndexer(t *testing.T) {
	env := newTestEnv(t)

	projector := NewProjectionService(env.db, nil, env.metrics, 0)
	n, err := projector.IndexPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
