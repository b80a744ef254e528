package repositories

import (
	"context"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LotFilter narrows lot listings; empty fields are ignored
type LotFilter struct {
	Status       domain.LotStatus
	CreatedByUID string
	ScannerUID   string
	SeparatorUID string
	Limit        int
}

// LotRepository defines persistence for lots
type LotRepository interface {
	WithTx(tx *gorm.DB) LotRepository
	Create(ctx context.Context, lot *models.Lot) error
	Get(ctx context.Context, lotCode string) (*models.Lot, error)
	Exists(ctx context.Context, lotCode string) (bool, error)
	List(ctx context.Context, filter LotFilter) ([]models.Lot, error)
	ListReadyForScan(ctx context.Context, limit int) ([]models.Lot, error)
	Transition(ctx context.Context, lotCode string, from domain.LotStatus, updates map[string]interface{}, unset ...string) error
	Delete(ctx context.Context, lotCode string) error
	CountByStatus(ctx context.Context) (map[domain.LotStatus]int64, error)
}

type lotRepository struct {
	db *gorm.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *gorm.DB) LotRepository {
	return &lotRepository{db: db}
}

func (r *lotRepository) WithTx(tx *gorm.DB) LotRepository {
	return &lotRepository{db: tx}
}

// Create inserts a lot; a lot with the same code yields ErrDuplicateKey
func (r *lotRepository) Create(ctx context.Context, lot *models.Lot) error {
	return translate(r.db.WithContext(ctx).Create(lot).Error, "failed to create lot")
}

func (r *lotRepository) Get(ctx context.Context, lotCode string) (*models.Lot, error) {
	var lot models.Lot
	err := r.db.WithContext(ctx).Where("lot_code = ?", lotCode).First(&lot).Error
	if err != nil {
		return nil, translate(err, "failed to get lot")
	}
	return &lot, nil
}

func (r *lotRepository) Exists(ctx context.Context, lotCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lot{}).Where("lot_code = ?", lotCode).Count(&count).Error
	if err != nil {
		return false, translate(err, "failed to check lot")
	}
	return count > 0, nil
}

func (r *lotRepository) List(ctx context.Context, filter LotFilter) ([]models.Lot, error) {
	q := r.db.WithContext(ctx).Model(&models.Lot{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CreatedByUID != "" {
		q = q.Where("created_by_uid = ?", filter.CreatedByUID)
	}
	if filter.ScannerUID != "" {
		q = q.Where("scanner_uid = ?", filter.ScannerUID)
	}
	if filter.SeparatorUID != "" {
		q = q.Where("separator_uid = ?", filter.SeparatorUID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var lots []models.Lot
	if err := q.Order("created_at DESC").Find(&lots).Error; err != nil {
		return nil, translate(err, "failed to list lots")
	}
	return lots, nil
}

// ListReadyForScan returns handed-off lots, oldest hand-off first
func (r *lotRepository) ListReadyForScan(ctx context.Context, limit int) ([]models.Lot, error) {
	q := r.db.WithContext(ctx).Where("status = ?", domain.LotReadyForScan).Order("end_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var lots []models.Lot
	if err := q.Find(&lots).Error; err != nil {
		return nil, translate(err, "failed to list lots ready for scan")
	}
	return lots, nil
}

// Transition applies updates only while the lot is still in status from and
// every unset column is still NULL. It returns ErrStaleState when no row matched.
func (r *lotRepository) Transition(ctx context.Context, lotCode string, from domain.LotStatus, updates map[string]interface{}, unset ...string) error {
	q := r.db.WithContext(ctx).Model(&models.Lot{}).
		Where("lot_code = ? AND status = ?", lotCode, from)
	for _, column := range unset {
		q = q.Where(clause.Expr{SQL: "? IS NULL", Vars: []interface{}{clause.Column{Name: column}}})
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return translate(res.Error, "failed to update lot status")
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *lotRepository) Delete(ctx context.Context, lotCode string) error {
	res := r.db.WithContext(ctx).Where("lot_code = ?", lotCode).Delete(&models.Lot{})
	if res.Error != nil {
		return translate(res.Error, "failed to delete lot")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *lotRepository) CountByStatus(ctx context.Context) (map[domain.LotStatus]int64, error) {
	var rows []struct {
		Status domain.LotStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Lot{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "failed to count lots")
	}

	counts := make(map[domain.LotStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
