package repositories

import (
	"context"

	"example.com/backstage/services/picking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RulesRepository stores the singleton picking rules row
type RulesRepository interface {
	Get(ctx context.Context) (*models.PickingRules, error)
	Save(ctx context.Context, rules *models.PickingRules) error
}

type rulesRepository struct {
	db *gorm.DB
}

// NewRulesRepository creates a new rules repository
func NewRulesRepository(db *gorm.DB) RulesRepository {
	return &rulesRepository{db: db}
}

// Get returns ErrNotFound until rules were saved once
func (r *rulesRepository) Get(ctx context.Context) (*models.PickingRules, error) {
	var rules models.PickingRules
	if err := r.db.WithContext(ctx).Where("id = ?", models.PickingRulesID).First(&rules).Error; err != nil {
		return nil, translate(err, "failed to get picking rules")
	}
	return &rules, nil
}

func (r *rulesRepository) Save(ctx context.Context, rules *models.PickingRules) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(rules).Error
	return translate(err, "failed to save picking rules")
}
