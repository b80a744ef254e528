package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/services"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLotImporter struct {
	mock.Mock
}

func (m *mockLotImporter) Create(ctx context.Context, in services.CreateLotInput) (*models.Lot, error) {
	args := m.Called(ctx, in)
	lot, _ := args.Get(0).(*models.Lot)
	return lot, args.Error(1)
}

func (m *mockLotImporter) CreateAdminLot(ctx context.Context, in services.CreateLotInput, a services.Assignment) (*models.Lot, error) {
	args := m.Called(ctx, in, a)
	lot, _ := args.Get(0).(*models.Lot)
	return lot, args.Error(1)
}

type mockRegistrar struct {
	mock.Mock
}

func (m *mockRegistrar) EnsureUser(ctx context.Context, id domain.Identity) error {
	return m.Called(ctx, id).Error(0)
}

func envelope(t *testing.T, eventType string, data interface{}) *azservicebus.ReceivedMessage {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	body, err := json.Marshal(AzureBusMessage{EventType: eventType, Data: payload})
	require.NoError(t, err)
	return &azservicebus.ReceivedMessage{MessageID: "m-1", Body: body}
}

func TestProcessImportLot(t *testing.T) {
	lots := &mockLotImporter{}
	users := &mockRegistrar{}
	p := NewImportProcessor(lots, users)

	in := services.CreateLotInput{
		LotCode:  "12345678",
		WorkMode: domain.WorkModeGeneral,
		Orders:   []services.ImportedOrder{{OrderCode: "100000001", Items: 3}},
		Creator:  domain.Identity{UID: "alice", Name: "Alice"},
	}
	users.On("EnsureUser", mock.Anything, in.Creator).Return(nil).Once()
	lots.On("Create", mock.Anything, in).Return(&models.Lot{LotCode: "12345678"}, nil).Once()

	require.NoError(t, p.ProcessMessage(context.Background(), envelope(t, ImportLot, in)))
	lots.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestProcessImportAdminLot(t *testing.T) {
	lots := &mockLotImporter{}
	users := &mockRegistrar{}
	p := NewImportProcessor(lots, users)

	general := domain.Identity{UID: "bruno", Name: "Bruno"}
	cmd := ImportAdminLotCommand{
		CreateLotInput: services.CreateLotInput{
			LotCode:  "12345678",
			WorkMode: domain.WorkModeGeneral,
			Orders:   []services.ImportedOrder{{OrderCode: "100000001", Items: 3}},
			Creator:  domain.Identity{UID: "root", Role: domain.RoleAdmin},
		},
		Assignment: services.Assignment{Type: domain.AssignmentGeneral, General: &general},
	}
	users.On("EnsureUser", mock.Anything, mock.Anything).Return(nil).Twice()
	lots.On("CreateAdminLot", mock.Anything, cmd.CreateLotInput, cmd.Assignment).Return(&models.Lot{}, nil).Once()

	require.NoError(t, p.ProcessMessage(context.Background(), envelope(t, ImportAdminLot, cmd)))
	lots.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestProcessRejectsMalformedMessages(t *testing.T) {
	p := NewImportProcessor(&mockLotImporter{}, nil)

	err := p.ProcessMessage(context.Background(), &azservicebus.ReceivedMessage{Body: []byte("{not json")})
	require.ErrorIs(t, err, ErrMalformed)

	err = p.ProcessMessage(context.Background(), envelope(t, "DeleteEverything", map[string]string{}))
	require.ErrorIs(t, err, ErrMalformed)

	err = p.ProcessMessage(context.Background(), envelope(t, ImportLot, "a string"))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Complete, Classify(nil))
	assert.Equal(t, Complete, Classify(services.NewLotExistsError("12345678")))
	assert.Equal(t, Complete, Classify(errors.Wrap(services.NewLotExistsError("12345678"), "import")))
	assert.Equal(t, DeadLetter, Classify(domain.Conflictf("order 100000001 already exists in lot 11111111")))
	assert.Equal(t, DeadLetter, Classify(domain.Conflictf("order 100000001 appears more than once in lot 12345678")))
	assert.Equal(t, DeadLetter, Classify(domain.Validationf("bad lot code")))
	assert.Equal(t, DeadLetter, Classify(errors.Wrap(ErrMalformed, "x")))
	assert.Equal(t, Abandon, Classify(errors.New("connection reset")))
}

func TestLotExistsErrorIsConflict(t *testing.T) {
	err := services.NewLotExistsError("12345678")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, services.ErrLotExists)
	assert.Equal(t, "lot 12345678 already exists", err.Error())

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.KindConflict, domainErr.Kind)

	assert.NotErrorIs(t, domain.Conflictf("lot 12345678 already exists"), services.ErrLotExists)
}
