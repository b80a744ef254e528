package services

import (
	"context"
	"time"
	_ "time/tzdata"

	"example.com/backstage/services/picking/internal/cache"
	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/repositories"
	"example.com/backstage/services/picking/internal/scoring"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	dateLayout              = "2006-01-02"
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// Profile is a user with the level derived from accumulated XP
type Profile struct {
	models.User
	Progress scoring.Progress `json:"progress"`
}

// UserService accumulates XP and daily streaks per user
type UserService struct {
	repo    repositories.UserRepository
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	clock   Clock
	loc     *time.Location
}

// NewUserService creates the XP/streak accumulator. Calendar days are
// evaluated in timezone.
func NewUserService(db *gorm.DB, c *cache.RedisCache, m *metrics.Metrics, clock Clock, timezone string) (*UserService, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid streak timezone %q", timezone)
	}

	return &UserService{
		repo:    repositories.NewUserRepository(db),
		cache:   c,
		ttl:     c.TTL(),
		metrics: m,
		clock:   clock,
		loc:     loc,
	}, nil
}

// EnsureUser creates the user on first sight and refreshes its name and role
// afterwards. Empty fields never overwrite stored ones; a new user without a
// role starts as ESTOQUISTA.
func (s *UserService) EnsureUser(ctx context.Context, id domain.Identity) error {
	if id.UID == "" {
		return domain.Validationf("user uid is required")
	}

	user := &models.User{UID: id.UID, Name: id.Name, Role: id.Role}
	var refresh []string
	if id.Name != "" {
		refresh = append(refresh, "name")
	}
	if id.Role != "" {
		refresh = append(refresh, "role")
	} else {
		user.Role = domain.RoleEstoquista
	}
	return s.repo.Upsert(ctx, user, refresh...)
}

// IncrementXp adds delta to the user's total. Users that do not exist are
// skipped with a warning.
func (s *UserService) IncrementXp(ctx context.Context, uid string, delta int64) error {
	if delta < 0 {
		return domain.Validationf("xp delta must not be negative, got %d", delta)
	}
	if uid == "" || delta == 0 {
		return nil
	}

	err := s.repo.IncrementXP(ctx, uid, delta)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Warn().Str("uid", uid).Int64("xp", delta).Msg("XP increment skipped, user does not exist")
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to add %d xp to user %s", delta, uid)
	}

	s.metrics.IncrementCounterBy(metrics.CounterXPPosted, delta)
	if err := s.cache.DeleteByPattern(ctx, cache.LeaderboardCachePattern()); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
	return nil
}

// NextStreak returns the streak after activity on today, given the last
// recorded activity day. Dates use the YYYY-MM-DD layout.
func NextStreak(current int, lastActivity, today, yesterday string) int {
	switch lastActivity {
	case today:
		return current
	case yesterday:
		return current + 1
	}
	return 1
}

// UpdateStreak records activity for today and returns the resulting streak
func (s *UserService) UpdateStreak(ctx context.Context, uid string) (int, error) {
	if uid == "" {
		return 0, nil
	}

	user, err := s.repo.Get(ctx, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Warn().Str("uid", uid).Msg("Streak update skipped, user does not exist")
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load user %s", uid)
	}

	now := s.clock.Now().In(s.loc)
	today := now.Format(dateLayout)
	if user.LastActivityDate == today {
		return user.Streak, nil
	}

	streak := NextStreak(user.Streak, user.LastActivityDate, today, now.AddDate(0, 0, -1).Format(dateLayout))
	if err := s.repo.SetStreak(ctx, uid, streak, today); err != nil {
		return 0, errors.Wrapf(err, "failed to update streak of user %s", uid)
	}
	return streak, nil
}

// Award posts xp and then the streak for uid. The two writes are not atomic
// and run after the caller's transaction has committed.
func (s *UserService) Award(ctx context.Context, uid string, xp int) error {
	if err := s.IncrementXp(ctx, uid, int64(xp)); err != nil {
		return err
	}
	_, err := s.UpdateStreak(ctx, uid)
	return err
}

// awardAll posts every award, logging failures; the completion they belong to
// is already committed
func (s *UserService) awardAll(ctx context.Context, source string, awards []XPAward) {
	for _, a := range awards {
		if err := s.Award(ctx, a.UID, a.XP); err != nil {
			log.Error().
				Err(err).
				Str("source", source).
				Str("uid", a.UID).
				Int("xp", a.XP).
				Msg("Failed to post XP award")
		}
	}
}

// GetProfile returns the user with level progress
func (s *UserService) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	user, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, notFound(err, "user %s not found", uid)
	}
	return &Profile{User: *user, Progress: scoring.LevelProgress(user.XPTotal)}, nil
}

// Leaderboard returns the top users by XP
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]Profile, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	key := cache.LeaderboardCacheKey(limit)
	var board []Profile
	if err := s.cache.Get(ctx, key, &board); err == nil {
		return board, nil
	}

	users, err := s.repo.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	board = make([]Profile, 0, len(users))
	for _, u := range users {
		board = append(board, Profile{User: u, Progress: scoring.LevelProgress(u.XPTotal)})
	}

	if err := s.cache.Set(ctx, key, board, s.ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache leaderboard")
	}
	return board, nil
}
