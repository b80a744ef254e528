package repositories

import (
	"context"
	"encoding/json"
	"time"

	"example.com/backstage/services/picking/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// EventRepository is the append-only activity log that feeds the search projection
type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository
	Append(ctx context.Context, aggregateType, aggregateID, eventType, actorUID string, data interface{}, at time.Time) error
	ListByAggregate(ctx context.Context, aggregateType, aggregateID string) ([]models.ActivityEvent, error)
	ListUnindexed(ctx context.Context, limit int) ([]models.ActivityEvent, error)
	CountUnindexed(ctx context.Context) (int64, error)
	MarkIndexed(ctx context.Context, ids []string) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new activity event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &eventRepository{db: tx}
}

func (r *eventRepository) Append(ctx context.Context, aggregateType, aggregateID, eventType, actorUID string, data interface{}, at time.Time) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event data")
	}

	event := models.ActivityEvent{
		ID:            uuid.New().String(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		ActorUID:      actorUID,
		Data:          payload,
		CreatedAt:     at,
	}
	return translate(r.db.WithContext(ctx).Create(&event).Error, "failed to append activity event")
}

func (r *eventRepository) ListByAggregate(ctx context.Context, aggregateType, aggregateID string) ([]models.ActivityEvent, error) {
	var events []models.ActivityEvent
	err := r.db.WithContext(ctx).
		Where("aggregate_type = ? AND aggregate_id = ?", aggregateType, aggregateID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, translate(err, "failed to list activity events")
	}
	return events, nil
}

func (r *eventRepository) ListUnindexed(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	var events []models.ActivityEvent
	err := r.db.WithContext(ctx).
		Where("indexed = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, translate(err, "failed to list unindexed events")
	}
	return events, nil
}

func (r *eventRepository) CountUnindexed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityEvent{}).Where("indexed = ?", false).Count(&count).Error
	if err != nil {
		return 0, translate(err, "failed to count unindexed events")
	}
	return count, nil
}

func (r *eventRepository) MarkIndexed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.ActivityEvent{}).
		Where("id IN ?", ids).
		Update("indexed", true).Error
	return translate(err, "failed to mark events indexed")
}
