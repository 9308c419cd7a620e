package mocks

import (
	"context"

	"storefront/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockReceiptRepository struct {
	mock.Mock
}

type MockStoreClient struct {
	mock.Mock
}

type MockCatalogSource struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message interface{}) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockStoreClient) GetProducts(ctx context.Context) (*domain.ProductList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductList), args.Error(1)
}

func (m *MockStoreClient) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderResult), args.Error(1)
}

func (m *MockCatalogSource) Products(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockReceiptRepository) Save(receipt *domain.Receipt) error {
	args := m.Called(receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) FindByID(id uint64) (*domain.Receipt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByProductId(productId string) ([]domain.Receipt, error) {
	args := m.Called(productId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Receipt), args.Error(1)
}
