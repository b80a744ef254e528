package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"example.com/backstage/services/picking/internal/cache"
	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/testutil"
	"example.com/backstage/services/picking/internal/tracing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	alice = domain.Identity{UID: "alice", Name: "Alice", Role: domain.RoleEstoquista}
	bruno = domain.Identity{UID: "bruno", Name: "Bruno", Role: domain.RoleEstoquista}
	admin = domain.Identity{UID: "root", Name: "Admin", Role: domain.RoleAdmin}
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	args := m.Called(ctx, eventType, data)
	return args.Error(0)
}

type testEnv struct {
	db        *gorm.DB
	clock     *testutil.FakeClock
	metrics   *metrics.Metrics
	publisher *mockPublisher
	seals     *SealRegistry
	rules     *RulesService
	users     *UserService
	lots      *LotService
	singles   *SingleOrderService
	tasks     *TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	clock := testutil.NewFakeClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	m := metrics.NewMetrics()
	tracer := tracing.Noop()

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	users, err := NewUserService(db, cache.Disabled(), m, clock, "America/Maceio")
	require.NoError(t, err)

	seals := NewSealRegistry(db)
	rules := NewRulesService(db, cache.Disabled())

	env := &testEnv{
		db:        db,
		clock:     clock,
		metrics:   m,
		publisher: pub,
		seals:     seals,
		rules:     rules,
		users:     users,
		lots:      NewLotService(db, seals, rules, users, pub, m, tracer, clock),
		singles:   NewSingleOrderService(db, seals, rules, users, pub, m, tracer, clock),
		tasks:     NewTaskService(db, users, m, clock),
	}

	ctx := context.Background()
	for _, id := range []domain.Identity{alice, bruno, admin} {
		require.NoError(t, users.EnsureUser(ctx, id))
	}
	return env
}

// orderCodes returns n consecutive 9-digit order codes starting at first
func orderCodes(first, n int) []string {
	codes := make([]string, n)
	for i := range codes {
		codes[i] = fmt.Sprintf("%09d", first+i)
	}
	return codes
}

func lotInput(lotCode string, mode domain.WorkMode, creator domain.Identity, codes []string, itemsEach int) CreateLotInput {
	orders := make([]ImportedOrder, 0, len(codes))
	for _, c := range codes {
		orders = append(orders, ImportedOrder{OrderCode: c, Cycle: "C1", Items: itemsEach})
	}
	return CreateLotInput{LotCode: lotCode, WorkMode: mode, Orders: orders, Creator: creator}
}

func sealCode(n int) string {
	return fmt.Sprintf("%010d", n)
}

func (e *testEnv) user(t *testing.T, uid string) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, e.db.Where("uid = ?", uid).First(&u).Error)
	return &u
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
