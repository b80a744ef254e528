package services

import (
	"context"
	"testing"
	"time"

	"example.com/backstage/services/picking/internal/cache"
	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name    string
		current int
		last    string
		want    int
	}{
		{"first activity", 0, "", 1},
		{"same day", 4, "2026-03-10", 4},
		{"consecutive day", 4, "2026-03-09", 5},
		{"gap resets", 4, "2026-03-07", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStreak(tt.current, tt.last, "2026-03-10", "2026-03-09"))
		})
	}
}

func TestUpdateStreakAcrossDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := repositories.NewUserRepository(env.db)

	// N on day D then activity on D+1
	require.NoError(t, repo.SetStreak(ctx, alice.UID, 3, "2026-03-09"))
	streak, err := env.users.UpdateStreak(ctx, alice.UID)
	require.NoError(t, err)
	assert.Equal(t, 4, streak)

	// same day again leaves it untouched
	streak, err = env.users.UpdateStreak(ctx, alice.UID)
	require.NoError(t, err)
	assert.Equal(t, 4, streak)

	// D+3 resets to 1
	env.clock.Advance(72 * time.Hour)
	streak, err = env.users.UpdateStreak(ctx, alice.UID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.Equal(t, "2026-03-13", env.user(t, alice.UID).LastActivityDate)
}

func TestUpdateStreakUsesReferenceTimezone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 01:30 UTC on the 11th is still the 10th in UTC-3
	env.clock.Set(time.Date(2026, 3, 11, 1, 30, 0, 0, time.UTC))
	require.NoError(t, repositories.NewUserRepository(env.db).SetStreak(ctx, alice.UID, 2, "2026-03-10"))

	streak, err := env.users.UpdateStreak(ctx, alice.UID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestIncrementXp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.IncrementXp(ctx, alice.UID, 120))
	require.NoError(t, env.users.IncrementXp(ctx, alice.UID, 30))
	assert.Equal(t, int64(150), env.user(t, alice.UID).XPTotal)
	assert.Equal(t, int64(150), env.metrics.GetCounter(metrics.CounterXPPosted))

	err := env.users.IncrementXp(ctx, alice.UID, -1)
	require.ErrorIs(t, err, domain.ErrValidation)

	// unknown users are skipped
	require.NoError(t, env.users.IncrementXp(ctx, "ghost", 10))
	_, err = env.users.GetProfile(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnsureUserKeepsProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.IncrementXp(ctx, alice.UID, 500))
	require.NoError(t, env.users.EnsureUser(ctx, domain.Identity{UID: alice.UID, Name: "Alice Souza", Role: domain.RoleAdmin}))

	u := env.user(t, alice.UID)
	assert.Equal(t, "Alice Souza", u.Name)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Equal(t, int64(500), u.XPTotal)

	require.ErrorIs(t, env.users.EnsureUser(ctx, domain.Identity{}), domain.ErrValidation)
}

func TestEnsureUserKeepsStoredFieldsWhenEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.EnsureUser(ctx, domain.Identity{UID: admin.UID}))

	u := env.user(t, admin.UID)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Equal(t, "Admin", u.Name)

	// name only refreshes the name
	require.NoError(t, env.users.EnsureUser(ctx, domain.Identity{UID: admin.UID, Name: "Root Admin"}))
	u = env.user(t, admin.UID)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Equal(t, "Root Admin", u.Name)

	// a user first seen without a role starts as ESTOQUISTA
	require.NoError(t, env.users.EnsureUser(ctx, domain.Identity{UID: "carla"}))
	assert.Equal(t, domain.RoleEstoquista, env.user(t, "carla").Role)
}

func TestGetProfileAndLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.IncrementXp(ctx, alice.UID, 450))
	require.NoError(t, env.users.IncrementXp(ctx, bruno.UID, 900))

	profile, err := env.users.GetProfile(ctx, alice.UID)
	require.NoError(t, err)
	assert.Equal(t, 3, profile.Progress.Level)
	assert.Equal(t, int64(450), profile.XPTotal)

	board, err := env.users.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, bruno.UID, board[0].UID)
	assert.Equal(t, 4, board[0].Progress.Level)
	assert.Equal(t, alice.UID, board[1].UID)
}

func TestNewUserServiceRejectsUnknownTimezone(t *testing.T) {
	env := newTestEnv(t)
	_, err := NewUserService(env.db, cache.Disabled(), env.metrics, env.clock, "Mars/Olympus")
	require.Error(t, err)
}
