package checkout

import (
	"context"

	"paylands-gateway/internal/paylands"
	"paylands-gateway/internal/payment"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Config() paylands.Config {
	args := m.Called()
	return args.Get(0).(paylands.Config)
}

func (m *MockGateway) CreatePayment(ctx context.Context, req paylands.PaymentRequest) (*paylands.InitiationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paylands.InitiationResponse), args.Error(1)
}

func (m *MockGateway) GetOrder(ctx context.Context, remoteID string) ([]byte, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockGateway) RedirectURL(token, locale string) string {
	args := m.Called(token, locale)
	return args.String(0)
}

type MockURLs struct {
	mock.Mock
}

func (m *MockURLs) CallbackURLs(ctx context.Context, order *payment.Order) (CallbackURLs, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(CallbackURLs), args.Error(1)
}
