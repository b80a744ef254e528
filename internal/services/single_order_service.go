package services

import (
	"context"
	"time"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/repositories"
	"example.com/backstage/services/picking/internal/scoring"
	"example.com/backstage/services/picking/internal/tracing"
	"example.com/backstage/services/picking/internal/validation"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const singleOrderIDPrefix = "SO-"

// CreateSingleOrderInput is the payload for a one-off order
type CreateSingleOrderInput struct {
	OrderCode string          `json:"orderCode" validate:"ordercode"`
	Cycle     string          `json:"cycle"`
	Items     int             `json:"items" validate:"min=0"`
	Creator   domain.Identity `json:"creator"`
}

// SingleOrderService drives the single order lifecycle
type SingleOrderService struct {
	db        *gorm.DB
	singles   repositories.SingleOrderRepository
	lotOrders repositories.LotOrderRepository
	codes     repositories.OrderCodeRepository
	events    repositories.EventRepository
	seals     *SealRegistry
	rules     *RulesService
	users     *UserService
	publisher Publisher
	metrics   *metrics.Metrics
	tracer    tracing.Tracer
	clock     Clock
}

// NewSingleOrderService creates a new single order service
func NewSingleOrderService(
	db *gorm.DB,
	seals *SealRegistry,
	rules *RulesService,
	users *UserService,
	publisher Publisher,
	m *metrics.Metrics,
	tracer tracing.Tracer,
	clock Clock,
) *SingleOrderService {
	return &SingleOrderService{
		db:        db,
		singles:   repositories.NewSingleOrderRepository(db),
		lotOrders: repositories.NewLotOrderRepository(db),
		codes:     repositories.NewOrderCodeRepository(db),
		events:    repositories.NewEventRepository(db),
		seals:     seals,
		rules:     rules,
		users:     users,
		publisher: publisher,
		metrics:   m,
		tracer:    tracer,
		clock:     clock,
	}
}

// Create registers a single order in DRAFT. Its order code must be unused
// by any lot or single order.
func (s *SingleOrderService) Create(ctx context.Context, in CreateSingleOrderInput) (*models.SingleOrder, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	order := &models.SingleOrder{
		ID:            singleOrderIDPrefix + uuid.New().String(),
		OrderCode:     in.OrderCode,
		Cycle:         in.Cycle,
		Items:         in.Items,
		Status:        domain.SingleOrderDraft,
		CreatedByUID:  in.Creator.UID,
		CreatedByName: in.Creator.Name,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		idx := orderCodeIndex{lotOrders: s.lotOrders.WithTx(tx), singles: s.singles.WithTx(tx), claims: s.codes.WithTx(tx)}
		if err := idx.ensureUnused(ctx, []string{in.OrderCode}); err != nil {
			return err
		}
		if err := idx.claimForSingleOrder(ctx, order.ID, in.OrderCode); err != nil {
			return err
		}
		if err := s.singles.WithTx(tx).Create(ctx, order); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return domain.Conflictf("order %s already exists", in.OrderCode)
			}
			return err
		}
		return s.events.WithTx(tx).Append(ctx, models.AggregateSingleOrder, order.ID, EventSingleOrderCreated, in.Creator.UID, map[string]interface{}{
			"orderCode": order.OrderCode,
			"items":     order.Items,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter(metrics.CounterSingleOrdersCreated)
	log.Info().
		Str("single_order_id", order.ID).
		Str("order_code", order.OrderCode).
		Str("created_by", order.CreatedByUID).
		Msg("Single order created")
	return s.singles.Get(ctx, order.ID)
}

// advance moves an order to next through a conditional update
func (s *SingleOrderService) advance(ctx context.Context, id string, next domain.SingleOrderStatus, plan func(o *models.SingleOrder, now time.Time) map[string]interface{}) (*models.SingleOrder, error) {
	order, err := s.singles.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "single order %s not found", id)
	}
	if err := domain.CheckSingleOrderTransition(id, order.Status, next); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	updates := plan(order, now)
	updates["status"] = next

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.singles.WithTx(tx).Transition(ctx, id, order.Status, updates); err != nil {
			if errors.Is(err, repositories.ErrStaleState) {
				return domain.InvalidStatef("single order %s was modified concurrently, expected %s", id, order.Status)
			}
			return err
		}
		return s.events.WithTx(tx).Append(ctx, models.AggregateSingleOrder, id, EventSingleOrderAdvanced, domain.ActorUID(ctx), updates, now)
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("single_order_id", id).Str("status", string(next)).Msg("Single order advanced")
	return s.singles.Get(ctx, id)
}

// StartSeparation moves a DRAFT order to SEPARATING
func (s *SingleOrderService) StartSeparation(ctx context.Context, id string) (*models.SingleOrder, error) {
	return s.advance(ctx, id, domain.SingleOrderSeparating, func(_ *models.SingleOrder, now time.Time) map[string]interface{} {
		return map[string]interface{}{"separation_start_at": now}
	})
}

// EndSeparation moves a SEPARATING order to READY_TO_SCAN and stores the separation duration
func (s *SingleOrderService) EndSeparation(ctx context.Context, id string) (*models.SingleOrder, error) {
	return s.advance(ctx, id, domain.SingleOrderReadyToScan, func(o *models.SingleOrder, now time.Time) map[string]interface{} {
		var d int64
		if o.SeparationStartAt != nil {
			d = durationMs(*o.SeparationStartAt, now)
		}
		return map[string]interface{}{"separation_end_at": now, "separation_duration_ms": d}
	})
}

// StartScanning moves a READY_TO_SCAN order to SCANNING
func (s *SingleOrderService) StartScanning(ctx context.Context, id string) (*models.SingleOrder, error) {
	return s.advance(ctx, id, domain.SingleOrderScanning, func(_ *models.SingleOrder, now time.Time) map[string]interface{} {
		return map[string]interface{}{"scan_start_at": now}
	})
}

// Seal seals a SCANNING order, completes it and credits its creator.
// Failures are reported in the result, never as an error.
func (s *SingleOrderService) Seal(ctx context.Context, id, sealedCode string) SealResult {
	started := time.Now()
	defer func() { s.metrics.RecordTimer(metrics.TimerSeal, time.Since(started)) }()

	result, completed := s.seal(ctx, id, sealedCode)
	if !result.Success {
		s.metrics.IncrementCounter(metrics.CounterSealsRejected)
		log.Warn().
			Str("single_order_id", id).
			Str("sealed_code", sealedCode).
			Str("reason", result.Error).
			Msg("Seal rejected")
		return result
	}

	s.metrics.IncrementCounter(metrics.CounterSealsAccepted)
	s.metrics.IncrementCounter(metrics.CounterSingleOrdersDone)

	s.users.awardAll(ctx, "single_order:"+id, []XPAward{{
		UID:  completed.CreatedByUID,
		Name: completed.CreatedByName,
		Role: "general",
		XP:   completed.XPEarned,
	}})

	if err := s.publisher.Publish(ctx, EventSingleOrderCompleted, map[string]interface{}{
		"singleOrderId": id,
		"orderCode":     completed.OrderCode,
		"xp":            completed.XPEarned,
		"uid":           completed.CreatedByUID,
	}); err != nil {
		s.metrics.IncrementCounter(metrics.CounterNotificationsDropped)
		log.Warn().Err(err).Str("single_order_id", id).Msg("Failed to publish single order completion")
	}

	log.Info().
		Str("single_order_id", id).
		Str("order_code", completed.OrderCode).
		Str("sealed_code", sealedCode).
		Int("xp", completed.XPEarned).
		Msg("Single order completed")
	return result
}

func (s *SingleOrderService) seal(ctx context.Context, id, sealedCode string) (SealResult, *models.SingleOrder) {
	txn := s.tracer.StartTransaction("seal-single-order")
	defer s.tracer.EndTransaction(txn)

	if !validation.IsValidSealCode(sealedCode) {
		return sealFailure(domain.Validationf("seal code must be exactly 10 digits, got %q", sealedCode)), nil
	}

	rules, err := s.rules.Get(ctx)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return sealFailure(err), nil
	}

	var completed models.SingleOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.seals.CheckAvailable(ctx, tx, sealedCode); err != nil {
			return err
		}

		order, err := s.singles.WithTx(tx).Get(ctx, id)
		if err != nil {
			return notFound(err, "single order %s not found", id)
		}
		if order.Status == domain.SingleOrderDone {
			return domain.Conflictf("order %s is already sealed", order.OrderCode)
		}
		if err := domain.CheckSingleOrderTransition(id, order.Status, domain.SingleOrderDone); err != nil {
			return err
		}

		now := s.clock.Now()
		var scan int64
		if order.ScanStartAt != nil {
			scan = durationMs(*order.ScanStartAt, now)
		}
		total := order.SeparationDurationMs + scan
		xp := scoring.ComputeSingleOrderXP(order.Items, total, rules)

		updates := map[string]interface{}{
			"status":            domain.SingleOrderDone,
			"sealed_code":       sealedCode,
			"sealed_at":         now,
			"scan_end_at":       now,
			"scan_duration_ms":  scan,
			"total_duration_ms": total,
			"xp_earned":         xp.Total,
		}
		if err := s.singles.WithTx(tx).Transition(ctx, id, domain.SingleOrderScanning, updates); err != nil {
			if errors.Is(err, repositories.ErrStaleState) {
				return domain.Conflictf("order %s is already sealed", order.OrderCode)
			}
			return err
		}
		if err := s.seals.TryReserve(ctx, tx, Reservation{
			SealedCode:    sealedCode,
			OrderCode:     order.OrderCode,
			SingleOrderID: id,
			At:            now,
		}); err != nil {
			return err
		}

		if err := s.events.WithTx(tx).Append(ctx, models.AggregateSingleOrder, id, EventSingleOrderCompleted, domain.ActorUID(ctx), map[string]interface{}{
			"sealedCode":      sealedCode,
			"xp":              xp,
			"totalDurationMs": total,
		}, now); err != nil {
			return err
		}

		completed = *order
		completed.Status = domain.SingleOrderDone
		completed.SealedCode = &sealedCode
		completed.SealedAt = &now
		completed.ScanEndAt = &now
		completed.ScanDurationMs = scan
		completed.TotalDurationMs = total
		completed.XPEarned = xp.Total
		return nil
	})
	if err != nil {
		s.tracer.RecordError(txn, err)
		return sealFailure(s.seals.describeSealFailure(ctx, err)), nil
	}
	return SealResult{Success: true}, &completed
}

// Get returns one single order
func (s *SingleOrderService) Get(ctx context.Context, id string) (*models.SingleOrder, error) {
	order, err := s.singles.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "single order %s not found", id)
	}
	return order, nil
}

// ListByUser returns the orders created by uid, newest first
func (s *SingleOrderService) ListByUser(ctx context.Context, uid string, limit int) ([]models.SingleOrder, error) {
	return s.singles.ListByUser(ctx, uid, limit)
}
