package repositories

import (
	"context"

	"example.com/backstage/services/picking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence for application users
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Get(ctx context.Context, uid string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User, refresh ...string) error
	IncrementXP(ctx context.Context, uid string, delta int64) error
	SetStreak(ctx context.Context, uid string, streak int, lastActivityDate string) error
	Top(ctx context.Context, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Get(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, translate(err, "failed to get user")
	}
	return &user, nil
}

// Upsert creates the user or, when it already exists, overwrites only the
// refresh columns. XP and streak are never touched.
func (r *userRepository) Upsert(ctx context.Context, user *models.User, refresh ...string) error {
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoNothing: true,
	}
	if len(refresh) > 0 {
		columns := make([]string, 0, len(refresh)+1)
		columns = append(columns, refresh...)
		onConflict.DoNothing = false
		onConflict.DoUpdates = clause.AssignmentColumns(append(columns, "updated_at"))
	}

	err := r.db.WithContext(ctx).Clauses(onConflict).Create(user).Error
	return translate(err, "failed to upsert user")
}

// IncrementXP adds delta to the stored total in a single statement
func (r *userRepository) IncrementXP(ctx context.Context, uid string, delta int64) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("uid = ?", uid).
		UpdateColumn("xp_total", gorm.Expr("xp_total + ?", delta))
	if res.Error != nil {
		return translate(res.Error, "failed to increment xp")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) SetStreak(ctx context.Context, uid string, streak int, lastActivityDate string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"streak":             streak,
			"last_activity_date": lastActivityDate,
		})
	if res.Error != nil {
		return translate(res.Error, "failed to update streak")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Top returns users ordered by XP, highest first
func (r *userRepository) Top(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("xp_total DESC").Order("uid ASC").Limit(limit).Find(&users).Error
	if err != nil {
		return nil, translate(err, "failed to list leaderboard")
	}
	return users, nil
}
