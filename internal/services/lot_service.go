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

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ImportedOrder is one order of an imported lot
type ImportedOrder struct {
	OrderCode  string     `json:"orderCode" validate:"ordercode"`
	Cycle      string     `json:"cycle"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	Items      int        `json:"items" validate:"min=0"`
}

// CreateLotInput is the payload of a lot import
type CreateLotInput struct {
	LotCode  string          `json:"lotCode" validate:"lotcode"`
	WorkMode domain.WorkMode `json:"workMode" validate:"workmode"`
	Orders   []ImportedOrder `json:"orders" validate:"required,min=1,dive"`
	Creator  domain.Identity `json:"creator"`
}

// Assignment pre-assigns workers to an admin-created lot
type Assignment struct {
	Type      domain.AssignmentType `json:"type" validate:"assignment"`
	General   *domain.Identity      `json:"general,omitempty"`
	Separator *domain.Identity      `json:"separator,omitempty"`
	Scanner   *domain.Identity      `json:"scanner,omitempty"`
}

// CompletionResult is the outcome of completing a lot
type CompletionResult struct {
	Lot    *models.Lot   `json:"lot"`
	XP     scoring.LotXP `json:"xp"`
	Awards []XPAward     `json:"awards"`
}

// ErrLotExists marks an import whose lot code is already stored. Errors
// matching it also match domain.ErrConflict.
var ErrLotExists = errors.New("lot already exists")

// lotExistsError is the Conflict returned when a lot code is imported twice
type lotExistsError struct {
	conflict error
}

// NewLotExistsError reports that lotCode is already stored
func NewLotExistsError(lotCode string) error {
	return &lotExistsError{conflict: domain.Conflictf("lot %s already exists", lotCode)}
}

func (e *lotExistsError) Error() string {
	return e.conflict.Error()
}

func (e *lotExistsError) Unwrap() error {
	return e.conflict
}

func (e *lotExistsError) Is(target error) bool {
	return target == ErrLotExists
}

// LotService drives the lot lifecycle
type LotService struct {
	db        *gorm.DB
	lots      repositories.LotRepository
	orders    repositories.LotOrderRepository
	singles   repositories.SingleOrderRepository
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

// NewLotService creates a new lot service
func NewLotService(
	db *gorm.DB,
	seals *SealRegistry,
	rules *RulesService,
	users *UserService,
	publisher Publisher,
	m *metrics.Metrics,
	tracer tracing.Tracer,
	clock Clock,
) *LotService {
	return &LotService{
		db:        db,
		lots:      repositories.NewLotRepository(db),
		orders:    repositories.NewLotOrderRepository(db),
		singles:   repositories.NewSingleOrderRepository(db),
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

// Create imports a lot with its orders in DRAFT
func (s *LotService) Create(ctx context.Context, in CreateLotInput) (*models.Lot, error) {
	return s.create(ctx, in, nil)
}

// CreateAdminLot imports a lot on behalf of workers chosen by an admin
func (s *LotService) CreateAdminLot(ctx context.Context, in CreateLotInput, a Assignment) (*models.Lot, error) {
	if err := validation.ValidateStruct(a); err != nil {
		return nil, err
	}
	switch a.Type {
	case domain.AssignmentGeneral:
		if a.General == nil || a.General.UID == "" {
			return nil, domain.Validationf("assignment %s requires a general user", a.Type)
		}
		in.WorkMode = domain.WorkModeGeneral
	case domain.AssignmentSeparated:
		if a.Separator == nil || a.Separator.UID == "" || a.Scanner == nil || a.Scanner.UID == "" {
			return nil, domain.Validationf("assignment %s requires a separator and a scanner", a.Type)
		}
		in.WorkMode = domain.WorkModeSeparator
	}
	return s.create(ctx, in, &a)
}

func (s *LotService) create(ctx context.Context, in CreateLotInput, a *Assignment) (*models.Lot, error) {
	txn := s.tracer.StartTransaction("create-lot")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "lot_code", in.LotCode)

	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.Creator.UID == "" {
		return nil, domain.Validationf("lot creator is required")
	}

	codes := make([]string, 0, len(in.Orders))
	for _, o := range in.Orders {
		codes = append(codes, o.OrderCode)
	}
	if dup, ok := firstDuplicate(codes); ok {
		return nil, domain.Conflictf("order %s appears more than once in lot %s", dup, in.LotCode)
	}

	now := s.clock.Now()
	lot := newLot(in, a)
	orders := make([]models.LotOrder, 0, len(in.Orders))
	for _, o := range in.Orders {
		orders = append(orders, models.LotOrder{
			OrderCode:  o.OrderCode,
			LotCode:    in.LotCode,
			Cycle:      o.Cycle,
			ApprovedAt: o.ApprovedAt,
			Items:      o.Items,
			Status:     domain.OrderPending,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.lots.WithTx(tx).Exists(ctx, in.LotCode)
		if err != nil {
			return err
		}
		if exists {
			return NewLotExistsError(in.LotCode)
		}

		idx := orderCodeIndex{lotOrders: s.orders.WithTx(tx), singles: s.singles.WithTx(tx), claims: s.codes.WithTx(tx)}
		if err := idx.ensureUnused(ctx, codes); err != nil {
			return err
		}

		if err := s.lots.WithTx(tx).Create(ctx, lot); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return NewLotExistsError(in.LotCode)
			}
			return err
		}
		if err := idx.claimForLot(ctx, in.LotCode, codes); err != nil {
			return err
		}
		if err := s.orders.WithTx(tx).CreateBatch(ctx, orders); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return domain.Conflictf("one or more orders of lot %s were imported concurrently", in.LotCode)
			}
			return err
		}

		return s.events.WithTx(tx).Append(ctx, models.AggregateLot, lot.LotCode, EventLotCreated, in.Creator.UID, map[string]interface{}{
			"totalOrders":    lot.TotalOrders,
			"totalItems":     lot.TotalItems,
			"workMode":       lot.WorkMode,
			"isAdminCreated": lot.IsAdminCreated,
		}, now)
	})
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	s.metrics.IncrementCounter(metrics.CounterLotsCreated)
	log.Info().
		Str("lot_code", lot.LotCode).
		Int("orders", lot.TotalOrders).
		Int("items", lot.TotalItems).
		Str("work_mode", string(lot.WorkMode)).
		Str("created_by", lot.CreatedByUID).
		Msg("Lot created")

	return s.lots.Get(ctx, lot.LotCode)
}

func newLot(in CreateLotInput, a *Assignment) *models.Lot {
	lot := &models.Lot{
		LotCode:       in.LotCode,
		Status:        domain.LotDraft,
		Cycle:         in.Orders[0].Cycle,
		TotalOrders:   len(in.Orders),
		WorkMode:      in.WorkMode,
		CreatedByUID:  in.Creator.UID,
		CreatedByName: in.Creator.Name,
	}
	for _, o := range in.Orders {
		lot.TotalItems += o.Items
	}
	if in.WorkMode.PreassignsSeparator() {
		lot.SeparatorUID = in.Creator.UID
		lot.SeparatorName = in.Creator.Name
	}

	if a == nil {
		return lot
	}

	lot.IsAdminCreated = true
	lot.AssignmentType = a.Type
	switch a.Type {
	case domain.AssignmentGeneral:
		lot.AssignedGeneralUID, lot.AssignedGeneralName = a.General.UID, a.General.Name
		lot.SeparatorUID, lot.SeparatorName = a.General.UID, a.General.Name
	case domain.AssignmentSeparated:
		lot.AssignedSeparatorUID, lot.AssignedSeparatorName = a.Separator.UID, a.Separator.Name
		lot.AssignedScannerUID, lot.AssignedScannerName = a.Scanner.UID, a.Scanner.Name
		lot.SeparatorUID, lot.SeparatorName = a.Separator.UID, a.Separator.Name
	}
	return lot
}

// mutate applies a conditional update to a lot. plan inspects the current lot
// and returns the column updates or a domain error. The update also requires
// the unset columns to still be NULL.
func (s *LotService) mutate(ctx context.Context, lotCode, eventType string, plan func(lot *models.Lot, now time.Time) (map[string]interface{}, error), unset ...string) (*models.Lot, error) {
	lot, err := s.lots.Get(ctx, lotCode)
	if err != nil {
		return nil, notFound(err, "lot %s not found", lotCode)
	}

	now := s.clock.Now()
	updates, err := plan(lot, now)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lots.WithTx(tx).Transition(ctx, lotCode, lot.Status, updates, unset...); err != nil {
			if errors.Is(err, repositories.ErrStaleState) {
				return domain.InvalidStatef("lot %s was modified concurrently, expected %s", lotCode, lot.Status)
			}
			return err
		}
		return s.events.WithTx(tx).Append(ctx, models.AggregateLot, lotCode, eventType, domain.ActorUID(ctx), updates, now)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("lot_code", lotCode).
		Str("event", eventType).
		Str("from", string(lot.Status)).
		Msg("Lot updated")
	return s.lots.Get(ctx, lotCode)
}

// Start moves a DRAFT lot to IN_PROGRESS
func (s *LotService) Start(ctx context.Context, lotCode string) (*models.Lot, error) {
	return s.mutate(ctx, lotCode, EventLotStarted, func(lot *models.Lot, now time.Time) (map[string]interface{}, error) {
		if err := domain.CheckLotTransition(lotCode, lot.Status, domain.LotInProgress); err != nil {
			return nil, err
		}
		return map[string]interface{}{"status": domain.LotInProgress, "start_at": now}, nil
	})
}

// Close ends separation of a lot worked by one person
func (s *LotService) Close(ctx context.Context, lotCode string) (*models.Lot, error) {
	return s.mutate(ctx, lotCode, EventLotClosed, func(lot *models.Lot, now time.Time) (map[string]interface{}, error) {
		if err := domain.CheckLotTransition(lotCode, lot.Status, domain.LotClosing); err != nil {
			return nil, err
		}
		return map[string]interface{}{"status": domain.LotClosing, "end_at": now}, nil
	})
}

// CloseForSeparator hands a separated lot off for scanning and freezes the separation duration
func (s *LotService) CloseForSeparator(ctx context.Context, lotCode string) (*models.Lot, error) {
	return s.mutate(ctx, lotCode, EventLotHandedOff, func(lot *models.Lot, now time.Time) (map[string]interface{}, error) {
		if err := domain.CheckLotTransition(lotCode, lot.Status, domain.LotReadyForScan); err != nil {
			return nil, err
		}
		var duration int64
		if lot.StartAt != nil {
			duration = durationMs(*lot.StartAt, now)
		}
		return map[string]interface{}{
			"status":      domain.LotReadyForScan,
			"end_at":      now,
			"duration_ms": duration,
		}, nil
	})
}

// ClaimForScanning lets a scanner take a READY_FOR_SCAN lot; the first claim wins
func (s *LotService) ClaimForScanning(ctx context.Context, lotCode string, scanner domain.Identity) (*models.Lot, error) {
	if scanner.UID == "" {
		return nil, domain.Validationf("scanner is required")
	}
	return s.mutate(ctx, lotCode, EventLotClaimed, func(lot *models.Lot, now time.Time) (map[string]interface{}, error) {
		if lot.Status != domain.LotReadyForScan {
			return nil, domain.InvalidStatef("lot %s is %s, only READY_FOR_SCAN lots can be claimed", lotCode, lot.Status)
		}
		if lot.AssignedScannerUID != "" && lot.AssignedScannerUID != scanner.UID {
			return nil, domain.Conflictf("lot %s is assigned to scanner %s", lotCode, lot.AssignedScannerUID)
		}
		return map[string]interface{}{
			"status":       domain.LotClosing,
			"scanner_uid":  scanner.UID,
			"scanner_name": scanner.Name,
		}, nil
	})
}

// StartScanning stamps the start of scanning on a CLOSING lot
func (s *LotService) StartScanning(ctx context.Context, lotCode string) (*models.Lot, error) {
	return s.mutate(ctx, lotCode, EventLotScanStarted, func(lot *models.Lot, now time.Time) (map[string]interface{}, error) {
		if lot.Status != domain.LotClosing {
			return nil, domain.InvalidStatef("lot %s is %s, scanning starts only while CLOSING", lotCode, lot.Status)
		}
		if lot.ScanStartAt != nil {
			return nil, domain.InvalidStatef("scanning of lot %s already started", lotCode)
		}
		return map[string]interface{}{"scan_start_at": now}, nil
	}, "scan_start_at")
}

// SealOrder seals one order of a CLOSING lot. Failures are reported in the
// result, never as an error.
func (s *LotService) SealOrder(ctx context.Context, lotCode, orderCode, sealedCode string) SealResult {
	started := time.Now()
	defer func() { s.metrics.RecordTimer(metrics.TimerSeal, time.Since(started)) }()

	result := s.sealOrder(ctx, lotCode, orderCode, sealedCode)
	if result.Success {
		s.metrics.IncrementCounter(metrics.CounterSealsAccepted)
		log.Info().
			Str("lot_code", lotCode).
			Str("order_code", orderCode).
			Str("sealed_code", sealedCode).
			Msg("Order sealed")
	} else {
		s.metrics.IncrementCounter(metrics.CounterSealsRejected)
		log.Warn().
			Str("lot_code", lotCode).
			Str("order_code", orderCode).
			Str("sealed_code", sealedCode).
			Str("reason", result.Error).
			Msg("Seal rejected")
	}
	return result
}

func (s *LotService) sealOrder(ctx context.Context, lotCode, orderCode, sealedCode string) SealResult {
	if !validation.IsValidSealCode(sealedCode) {
		return sealFailure(domain.Validationf("seal code must be exactly 10 digits, got %q", sealedCode))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.seals.CheckAvailable(ctx, tx, sealedCode); err != nil {
			return err
		}

		lot, err := s.lots.WithTx(tx).Get(ctx, lotCode)
		if err != nil {
			return notFound(err, "lot %s not found", lotCode)
		}
		if lot.Status != domain.LotClosing {
			return domain.InvalidStatef("lot %s is %s, orders are sealed only while CLOSING", lotCode, lot.Status)
		}

		order, err := s.orders.WithTx(tx).Get(ctx, lotCode, orderCode)
		if err != nil {
			return notFound(err, "order %s not found in lot %s", orderCode, lotCode)
		}
		if order.Status == domain.OrderSealed {
			return domain.Conflictf("order %s is already sealed", orderCode)
		}

		now := s.clock.Now()
		if err := s.orders.WithTx(tx).MarkSealed(ctx, orderCode, sealedCode, now); err != nil {
			if errors.Is(err, repositories.ErrStaleState) {
				return domain.Conflictf("order %s is already sealed", orderCode)
			}
			return err
		}
		if err := s.seals.TryReserve(ctx, tx, Reservation{
			SealedCode: sealedCode,
			OrderCode:  orderCode,
			LotCode:    lotCode,
			At:         now,
		}); err != nil {
			return err
		}

		return s.events.WithTx(tx).Append(ctx, models.AggregateLot, lotCode, EventOrderSealed, domain.ActorUID(ctx), map[string]interface{}{
			"orderCode":  orderCode,
			"sealedCode": sealedCode,
		}, now)
	})
	if err != nil {
		return sealFailure(s.seals.describeSealFailure(ctx, err))
	}
	return SealResult{Success: true}
}

// CheckAllSealed reports whether the lot has no pending orders left
func (s *LotService) CheckAllSealed(ctx context.Context, lotCode string) (bool, error) {
	exists, err := s.lots.Exists(ctx, lotCode)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, domain.NotFoundf("lot %s not found", lotCode)
	}

	pending, err := s.orders.CountPending(ctx, lotCode)
	if err != nil {
		return false, err
	}
	return pending == 0, nil
}

// Complete finishes a fully sealed CLOSING lot, scores it and credits the workers
func (s *LotService) Complete(ctx context.Context, lotCode string) (*CompletionResult, error) {
	started := time.Now()
	defer func() { s.metrics.RecordTimer(metrics.TimerLotComplete, time.Since(started)) }()

	txn := s.tracer.StartTransaction("complete-lot")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "lot_code", lotCode)

	lot, err := s.lots.Get(ctx, lotCode)
	if err != nil {
		return nil, notFound(err, "lot %s not found", lotCode)
	}
	if err := domain.CheckLotTransition(lotCode, lot.Status, domain.LotDone); err != nil {
		return nil, err
	}

	// rules are read before the transaction and passed to the engine
	rules, err := s.rules.Get(ctx)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	now := s.clock.Now()
	separation := lot.DurationMs
	if separation == 0 && lot.StartAt != nil && lot.EndAt != nil {
		separation = durationMs(*lot.StartAt, *lot.EndAt)
	}
	var scan, total int64
	if lot.EndAt != nil {
		scanStart := *lot.EndAt
		if lot.ScanStartAt != nil {
			scanStart = *lot.ScanStartAt
		}
		scan = durationMs(scanStart, now)
		total = durationMs(*lot.EndAt, now)
	}

	seg := s.tracer.StartSegment(txn, "score")
	xp := scoring.ComputeLotXP(lot.Totals(), separation, rules)
	seg.End()

	awards := distributeLotXP(lot, xp.Total)
	updates := map[string]interface{}{
		"status":              domain.LotDone,
		"scan_end_at":         now,
		"duration_ms":         separation,
		"scan_duration_ms":    scan,
		"total_duration_ms":   total,
		"xp_earned":           xp.Total,
		"separator_xp_earned": 0,
		"scanner_xp_earned":   0,
	}
	if lot.IsSplit() {
		updates["separator_xp_earned"] = awards[0].XP
		updates["scanner_xp_earned"] = awards[1].XP
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := s.orders.WithTx(tx).CountPending(ctx, lotCode)
		if err != nil {
			return err
		}
		if pending > 0 {
			return domain.InvalidStatef("lot %s still has %d unsealed orders", lotCode, pending)
		}

		if err := s.lots.WithTx(tx).Transition(ctx, lotCode, domain.LotClosing, updates); err != nil {
			if errors.Is(err, repositories.ErrStaleState) {
				return domain.InvalidStatef("lot %s was completed or modified concurrently", lotCode)
			}
			return err
		}

		return s.events.WithTx(tx).Append(ctx, models.AggregateLot, lotCode, EventLotCompleted, domain.ActorUID(ctx), map[string]interface{}{
			"xp":              xp,
			"awards":          awards,
			"durationMs":      separation,
			"scanDurationMs":  scan,
			"totalDurationMs": total,
		}, now)
	})
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	s.users.awardAll(ctx, "lot:"+lotCode, awards)
	s.metrics.IncrementCounter(metrics.CounterLotsCompleted)

	completed, err := s.lots.Get(ctx, lotCode)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, EventLotCompleted, map[string]interface{}{
		"lotCode": lotCode,
		"xp":      xp.Total,
		"awards":  awards,
	}); err != nil {
		s.metrics.IncrementCounter(metrics.CounterNotificationsDropped)
		log.Warn().Err(err).Str("lot_code", lotCode).Msg("Failed to publish lot completion")
	}

	log.Info().
		Str("lot_code", lotCode).
		Int("xp", xp.Total).
		Int("bonus_percent", xp.BonusPercent).
		Float64("speed", xp.Speed).
		Bool("split", lot.IsSplit()).
		Msg("Lot completed")

	return &CompletionResult{Lot: completed, XP: xp, Awards: awards}, nil
}

// distributeLotXP splits total 60/40 between a distinct separator and scanner,
// otherwise credits it all to the assigned general user or the creator
func distributeLotXP(lot *models.Lot, total int) []XPAward {
	if lot.IsSplit() {
		sep, scan := scoring.SplitXP(total)
		return []XPAward{
			{UID: lot.SeparatorUID, Name: lot.SeparatorName, Role: "separator", XP: sep},
			{UID: lot.ScannerUID, Name: lot.ScannerName, Role: "scanner", XP: scan},
		}
	}

	if lot.AssignedGeneralUID != "" {
		return []XPAward{{UID: lot.AssignedGeneralUID, Name: lot.AssignedGeneralName, Role: "general", XP: total}}
	}
	return []XPAward{{UID: lot.CreatedByUID, Name: lot.CreatedByName, Role: "general", XP: total}}
}

// Delete removes a lot in any state with its orders, freeing their seal codes
func (s *LotService) Delete(ctx context.Context, lotCode string) error {
	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.lots.WithTx(tx).Exists(ctx, lotCode)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NotFoundf("lot %s not found", lotCode)
		}

		released, err := s.seals.ReleaseByLot(ctx, tx, lotCode)
		if err != nil {
			return err
		}
		orders, err := s.orders.WithTx(tx).DeleteByLot(ctx, lotCode)
		if err != nil {
			return err
		}
		if _, err := s.codes.WithTx(tx).ReleaseByLot(ctx, lotCode); err != nil {
			return err
		}
		if err := s.lots.WithTx(tx).Delete(ctx, lotCode); err != nil {
			return notFound(err, "lot %s not found", lotCode)
		}

		return s.events.WithTx(tx).Append(ctx, models.AggregateLot, lotCode, EventLotDeleted, domain.ActorUID(ctx), map[string]interface{}{
			"ordersDeleted": orders,
			"sealsReleased": released,
		}, now)
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementCounter(metrics.CounterLotsDeleted)
	log.Info().Str("lot_code", lotCode).Msg("Lot deleted")
	return nil
}

// Get returns one lot
func (s *LotService) Get(ctx context.Context, lotCode string) (*models.Lot, error) {
	lot, err := s.lots.Get(ctx, lotCode)
	if err != nil {
		return nil, notFound(err, "lot %s not found", lotCode)
	}
	return lot, nil
}

// List returns lots matching filter, newest first
func (s *LotService) List(ctx context.Context, filter repositories.LotFilter) ([]models.Lot, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validationf("unknown lot status %q", filter.Status)
	}
	return s.lots.List(ctx, filter)
}

// ListOrders returns the orders of a lot
func (s *LotService) ListOrders(ctx context.Context, lotCode string) ([]models.LotOrder, error) {
	exists, err := s.lots.Exists(ctx, lotCode)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("lot %s not found", lotCode)
	}
	return s.orders.ListByLot(ctx, lotCode)
}

// ListReadyForScan returns lots waiting for a scanner, oldest hand-off first
func (s *LotService) ListReadyForScan(ctx context.Context, limit int) ([]models.Lot, error) {
	return s.lots.ListReadyForScan(ctx, limit)
}

// CountByStatus returns the number of lots per status
func (s *LotService) CountByStatus(ctx context.Context) (map[domain.LotStatus]int64, error) {
	return s.lots.CountByStatus(ctx)
}
