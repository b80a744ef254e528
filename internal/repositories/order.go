package repositories

import (
	"context"
	"time"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/models"

	"gorm.io/gorm"
)

const orderBatchSize = 500

// LotOrderRepository defines persistence for orders that belong to a lot
type LotOrderRepository interface {
	WithTx(tx *gorm.DB) LotOrderRepository
	CreateBatch(ctx context.Context, orders []models.LotOrder) error
	Get(ctx context.Context, lotCode, orderCode string) (*models.LotOrder, error)
	ListByLot(ctx context.Context, lotCode string) ([]models.LotOrder, error)
	FindByCodes(ctx context.Context, orderCodes []string) ([]models.LotOrder, error)
	CountPending(ctx context.Context, lotCode string) (int64, error)
	MarkSealed(ctx context.Context, orderCode, sealedCode string, at time.Time) error
	DeleteByLot(ctx context.Context, lotCode string) (int64, error)
}

type lotOrderRepository struct {
	db *gorm.DB
}

// NewLotOrderRepository creates a new lot order repository
func NewLotOrderRepository(db *gorm.DB) LotOrderRepository {
	return &lotOrderRepository{db: db}
}

func (r *lotOrderRepository) WithTx(tx *gorm.DB) LotOrderRepository {
	return &lotOrderRepository{db: tx}
}

func (r *lotOrderRepository) CreateBatch(ctx context.Context, orders []models.LotOrder) error {
	if len(orders) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(orders, orderBatchSize).Error, "failed to create lot orders")
}

func (r *lotOrderRepository) Get(ctx context.Context, lotCode, orderCode string) (*models.LotOrder, error) {
	var order models.LotOrder
	err := r.db.WithContext(ctx).
		Where("lot_code = ? AND order_code = ?", lotCode, orderCode).
		First(&order).Error
	if err != nil {
		return nil, translate(err, "failed to get lot order")
	}
	return &order, nil
}

func (r *lotOrderRepository) ListByLot(ctx context.Context, lotCode string) ([]models.LotOrder, error) {
	var orders []models.LotOrder
	err := r.db.WithContext(ctx).Where("lot_code = ?", lotCode).Order("order_code ASC").Find(&orders).Error
	if err != nil {
		return nil, translate(err, "failed to list lot orders")
	}
	return orders, nil
}

// FindByCodes returns the orders among orderCodes that already exist in any lot
func (r *lotOrderRepository) FindByCodes(ctx context.Context, orderCodes []string) ([]models.LotOrder, error) {
	var orders []models.LotOrder
	if len(orderCodes) == 0 {
		return orders, nil
	}
	if err := r.db.WithContext(ctx).Where("order_code IN ?", orderCodes).Find(&orders).Error; err != nil {
		return nil, translate(err, "failed to look up order codes")
	}
	return orders, nil
}

func (r *lotOrderRepository) CountPending(ctx context.Context, lotCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LotOrder{}).
		Where("lot_code = ? AND status = ?", lotCode, domain.OrderPending).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "failed to count pending orders")
	}
	return count, nil
}

// MarkSealed moves a PENDING order to SEALED; ErrStaleState if it was not pending
func (r *lotOrderRepository) MarkSealed(ctx context.Context, orderCode, sealedCode string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.LotOrder{}).
		Where("order_code = ? AND status = ?", orderCode, domain.OrderPending).
		Updates(map[string]interface{}{
			"status":      domain.OrderSealed,
			"sealed_code": sealedCode,
			"sealed_at":   at,
		})
	if res.Error != nil {
		return translate(res.Error, "failed to seal order")
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *lotOrderRepository) DeleteByLot(ctx context.Context, lotCode string) (int64, error) {
	res := r.db.WithContext(ctx).Where("lot_code = ?", lotCode).Delete(&models.LotOrder{})
	if res.Error != nil {
		return 0, translate(res.Error, "failed to delete lot orders")
	}
	return res.RowsAffected, nil
}

// OrderCodeRepository defines persistence for the shared order code namespace
type OrderCodeRepository interface {
	WithTx(tx *gorm.DB) OrderCodeRepository
	// Claim inserts every code; one already claimed yields ErrDuplicateKey
	Claim(ctx context.Context, codes []models.OrderCode) error
	ReleaseByLot(ctx context.Context, lotCode string) (int64, error)
}

type orderCodeRepository struct {
	db *gorm.DB
}

// NewOrderCodeRepository creates a new order code repository
func NewOrderCodeRepository(db *gorm.DB) OrderCodeRepository {
	return &orderCodeRepository{db: db}
}

func (r *orderCodeRepository) WithTx(tx *gorm.DB) OrderCodeRepository {
	return &orderCodeRepository{db: tx}
}

func (r *orderCodeRepository) Claim(ctx context.Context, codes []models.OrderCode) error {
	if len(codes) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(codes, orderBatchSize).Error, "failed to claim order codes")
}

func (r *orderCodeRepository) ReleaseByLot(ctx context.Context, lotCode string) (int64, error) {
	res := r.db.WithContext(ctx).Where("lot_code = ?", lotCode).Delete(&models.OrderCode{})
	if res.Error != nil {
		return 0, translate(res.Error, "failed to release order codes")
	}
	return res.RowsAffected, nil
}
