package service

import (
	"context"

	"go-pos-inventory/internal/model"
)

// CatalogCache stores catalog listings keyed by search term. Implementations
// must tolerate being invalidated concurrently with reads.
type CatalogCache interface {
	GetCatalog(ctx context.Context, query string) ([]model.Product, bool)
	SetCatalog(ctx context.Context, query string, products []model.Product)
	Invalidate(ctx context.Context)
}

type noopCatalog struct{}

func (noopCatalog) GetCatalog(context.Context, string) ([]model.Product, bool) { return nil, false }

func (noopCatalog) SetCatalog(context.Context, string, []model.Product) {}

func (noopCatalog) Invalidate(context.Context) {}
