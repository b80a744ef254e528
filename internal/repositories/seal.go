package repositories

import (
	"context"

	"example.com/backstage/services/picking/internal/models"

	"gorm.io/gorm"
)

// SealRepository persists the global seal code registry
type SealRepository interface {
	WithTx(tx *gorm.DB) SealRepository
	Get(ctx context.Context, sealedCode string) (*models.SealedCode, error)
	Create(ctx context.Context, entry *models.SealedCode) error
	DeleteByLot(ctx context.Context, lotCode string) (int64, error)
}

type sealRepository struct {
	db *gorm.DB
}

// NewSealRepository creates a new seal registry repository
func NewSealRepository(db *gorm.DB) SealRepository {
	return &sealRepository{db: db}
}

func (r *sealRepository) WithTx(tx *gorm.DB) SealRepository {
	return &sealRepository{db: tx}
}

func (r *sealRepository) Get(ctx context.Context, sealedCode string) (*models.SealedCode, error) {
	var entry models.SealedCode
	if err := r.db.WithContext(ctx).Where("sealed_code = ?", sealedCode).First(&entry).Error; err != nil {
		return nil, translate(err, "failed to get sealed code")
	}
	return &entry, nil
}

// Create inserts a registry entry; the primary key makes a reused code fail with ErrDuplicateKey
func (r *sealRepository) Create(ctx context.Context, entry *models.SealedCode) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error, "failed to register sealed code")
}

func (r *sealRepository) DeleteByLot(ctx context.Context, lotCode string) (int64, error) {
	res := r.db.WithContext(ctx).Where("lot_code = ?", lotCode).Delete(&models.SealedCode{})
	if res.Error != nil {
		return 0, translate(res.Error, "failed to release sealed codes")
	}
	return res.RowsAffected, nil
}
