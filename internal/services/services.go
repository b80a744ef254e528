package services

import (
	"context"
	"time"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/repositories"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock
func SystemClock() Clock {
	return systemClock{}
}

// Cache is the subset of the Redis cache used by services
type Cache interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Publisher sends integration events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// NoopPublisher drops every event
func NoopPublisher() Publisher {
	return noopPublisher{}
}

// Indexer projects activity events into a search backend
type Indexer interface {
	IndexActivity(ctx context.Context, event models.ActivityEvent) error
}

// Activity event types
const (
	EventLotCreated           = "LotCreated"
	EventLotStarted           = "LotStarted"
	EventLotClosed            = "LotClosed"
	EventLotHandedOff         = "LotHandedOffForScan"
	EventLotClaimed           = "LotClaimedForScan"
	EventLotScanStarted       = "LotScanStarted"
	EventOrderSealed          = "OrderSealed"
	EventLotCompleted         = "LotCompleted"
	EventLotDeleted           = "LotDeleted"
	EventSingleOrderCreated   = "SingleOrderCreated"
	EventSingleOrderAdvanced  = "SingleOrderAdvanced"
	EventSingleOrderCompleted = "SingleOrderCompleted"
	EventTaskLogged           = "TaskLogged"
)

// SealResult reports a seal attempt without failing the caller's workflow
type SealResult struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Kind    domain.Kind `json:"kind,omitempty"`
}

func sealFailure(err error) SealResult {
	var taken *sealTakenError
	if errors.As(err, &taken) {
		return SealResult{Success: false, Error: taken.Error(), Kind: domain.KindConflict}
	}
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return SealResult{Success: false, Error: domainErr.Message, Kind: domainErr.Kind}
	}
	log.Error().Err(err).Msg("Seal attempt failed unexpectedly")
	return SealResult{Success: false, Error: "internal error while sealing"}
}

// XPAward is XP credited to one user by a completion
type XPAward struct {
	UID  string `json:"uid"`
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
	XP   int    `json:"xp"`
}

// notFound converts a repository miss into a domain NotFound error
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return domain.NotFoundf(format, args...)
	}
	return err
}

// durationMs is the number of milliseconds from start to end, never negative
func durationMs(start, end time.Time) int64 {
	d := end.Sub(start).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}
