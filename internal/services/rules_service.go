package services

import (
	"context"
	"time"

	"example.com/backstage/services/picking/internal/cache"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/repositories"
	"example.com/backstage/services/picking/internal/scoring"
	"example.com/backstage/services/picking/internal/validation"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RulesService reads and updates the scoring rules singleton
type RulesService struct {
	repo  repositories.RulesRepository
	cache Cache
	ttl   time.Duration
}

// NewRulesService creates a rules store; a nil cache disables caching
func NewRulesService(db *gorm.DB, c *cache.RedisCache) *RulesService {
	return &RulesService{
		repo:  repositories.NewRulesRepository(db),
		cache: c,
		ttl:   c.TTL(),
	}
}

// Get returns the stored rules, or the defaults when none were ever saved
func (s *RulesService) Get(ctx context.Context) (scoring.Rules, error) {
	var rules scoring.Rules
	if err := s.cache.Get(ctx, cache.RulesCacheKey(), &rules); err == nil {
		return rules, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrDisabled) {
		log.Warn().Err(err).Msg("Failed to read rules from cache")
	}

	row, err := s.repo.Get(ctx)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		rules = scoring.DefaultRules
	case err != nil:
		return scoring.Rules{}, errors.Wrap(err, "failed to load scoring rules")
	default:
		rules = row.ToRules()
	}

	if err := s.cache.Set(ctx, cache.RulesCacheKey(), rules, s.ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache rules")
	}
	return rules, nil
}

// Update validates and stores rules, replacing the previous values
func (s *RulesService) Update(ctx context.Context, rules scoring.Rules, updatedBy string) (scoring.Rules, error) {
	if err := validation.ValidateStruct(rules); err != nil {
		return scoring.Rules{}, err
	}

	if err := s.repo.Save(ctx, models.NewPickingRules(rules, updatedBy)); err != nil {
		return scoring.Rules{}, errors.Wrap(err, "failed to save scoring rules")
	}

	if err := s.cache.Delete(ctx, cache.RulesCacheKey()); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate cached rules")
	}

	log.Info().
		Str("updated_by", updatedBy).
		Int("xp_base_per_lot", rules.XPBasePerLot).
		Int("xp_per_order", rules.XPPerOrder).
		Int("xp_per_item", rules.XPPerItem).
		Float64("speed_target", rules.SpeedTargetItemsPerMin).
		Msg("Scoring rules updated")
	return rules, nil
}
