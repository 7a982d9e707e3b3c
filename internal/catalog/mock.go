package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
)

//go:embed products.json
var mockProductsJSON []byte

// MockProducts decodes the built-in demo catalog. Each call returns fresh
// values.
func MockProducts() ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(mockProductsJSON, &products); err != nil {
		return nil, fmt.Errorf("decode mock catalog: %w", err)
	}
	return products, nil
}
