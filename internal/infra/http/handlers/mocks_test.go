package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/heatpumphub/backoffice/internal/entity"
	"github.com/heatpumphub/backoffice/internal/infra/integration/qhare"
	"github.com/heatpumphub/backoffice/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByQhareID(ctx context.Context, qhareID string) (*entity.Lead, error) {
	args := m.Called(ctx, qhareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) HasAppointmentOn(ctx context.Context, date, excludeID string) (bool, error) {
	args := m.Called(ctx, date, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockQhareGateway
type MockQhareGateway struct {
	mock.Mock
}

func (m *MockQhareGateway) UpdateLead(ctx context.Context, input qhare.UpdateInput) (map[string]interface{}, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishQharePush(ctx context.Context, payload queue.PushPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
