package infra

import (
	"context"

	"storefront/internal/domain"
)

type StoreClientInterface interface {
	GetProducts(ctx context.Context) (*domain.ProductList, error)
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error)
}

var _ StoreClientInterface = (*StoreClient)(nil)
