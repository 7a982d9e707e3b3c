package memory

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// CatalogRepository serves a fixed product list.
type CatalogRepository struct {
	products []domain.Product
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository copies products into a new repository.
func NewCatalogRepository(products []domain.Product) *CatalogRepository {
	return &CatalogRepository{products: cloneAll(products)}
}

// List returns a copy of every product.
func (r *CatalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneAll(r.products), nil
}

func cloneAll(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
