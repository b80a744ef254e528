package repositories

import (
	"context"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/models"

	"gorm.io/gorm"
)

// SingleOrderRepository defines persistence for single orders
type SingleOrderRepository interface {
	WithTx(tx *gorm.DB) SingleOrderRepository
	Create(ctx context.Context, order *models.SingleOrder) error
	Get(ctx context.Context, id string) (*models.SingleOrder, error)
	ListByUser(ctx context.Context, uid string, limit int) ([]models.SingleOrder, error)
	FindByCodes(ctx context.Context, orderCodes []string) ([]models.SingleOrder, error)
	Transition(ctx context.Context, id string, from domain.SingleOrderStatus, updates map[string]interface{}) error
}

type singleOrderRepository struct {
	db *gorm.DB
}

// NewSingleOrderRepository creates a new single order repository
func NewSingleOrderRepository(db *gorm.DB) SingleOrderRepository {
	return &singleOrderRepository{db: db}
}

func (r *singleOrderRepository) WithTx(tx *gorm.DB) SingleOrderRepository {
	return &singleOrderRepository{db: tx}
}

func (r *singleOrderRepository) Create(ctx context.Context, order *models.SingleOrder) error {
	return translate(r.db.WithContext(ctx).Create(order).Error, "failed to create single order")
}

func (r *singleOrderRepository) Get(ctx context.Context, id string) (*models.SingleOrder, error) {
	var order models.SingleOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, translate(err, "failed to get single order")
	}
	return &order, nil
}

func (r *singleOrderRepository) ListByUser(ctx context.Context, uid string, limit int) ([]models.SingleOrder, error) {
	q := r.db.WithContext(ctx).Where("created_by_uid = ?", uid).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var orders []models.SingleOrder
	if err := q.Find(&orders).Error; err != nil {
		return nil, translate(err, "failed to list single orders")
	}
	return orders, nil
}

func (r *singleOrderRepository) FindByCodes(ctx context.Context, orderCodes []string) ([]models.SingleOrder, error) {
	var orders []models.SingleOrder
	if len(orderCodes) == 0 {
		return orders, nil
	}
	if err := r.db.WithContext(ctx).Where("order_code IN ?", orderCodes).Find(&orders).Error; err != nil {
		return nil, translate(err, "failed to look up single order codes")
	}
	return orders, nil
}

// Transition applies updates only while the order is still in status from
func (r *singleOrderRepository) Transition(ctx context.Context, id string, from domain.SingleOrderStatus, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.SingleOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return translate(res.Error, "failed to update single order status")
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
