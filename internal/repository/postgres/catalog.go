package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
)

const productColumns = `id, name, description, price, original_price, images,
	category, subcategory, brand, rating, review_count, stock, tags, features,
	specifications, dimensions, colors, sizes, is_new, is_featured,
	is_best_seller, discount, created_at, updated_at`

const listProductsSQL = `SELECT ` + productColumns + `
	FROM products
	ORDER BY position, id`

const upsertProductSQL = `
	INSERT INTO products (
		id, position, name, description, price, original_price, images,
		category, subcategory, brand, rating, review_count, stock, tags, features,
		specifications, dimensions, colors, sizes, is_new, is_featured,
		is_best_seller, discount, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	ON CONFLICT (id) DO UPDATE SET
		position = EXCLUDED.position,
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		original_price = EXCLUDED.original_price,
		images = EXCLUDED.images,
		category = EXCLUDED.category,
		subcategory = EXCLUDED.subcategory,
		brand = EXCLUDED.brand,
		rating = EXCLUDED.rating,
		review_count = EXCLUDED.review_count,
		stock = EXCLUDED.stock,
		tags = EXCLUDED.tags,
		features = EXCLUDED.features,
		specifications = EXCLUDED.specifications,
		dimensions = EXCLUDED.dimensions,
		colors = EXCLUDED.colors,
		sizes = EXCLUDED.sizes,
		is_new = EXCLUDED.is_new,
		is_featured = EXCLUDED.is_featured,
		is_best_seller = EXCLUDED.is_best_seller,
		discount = EXCLUDED.discount,
		updated_at = EXCLUDED.updated_at`

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	db database.DBTX
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(db database.DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// List returns every product ordered by catalog position.
func (r *CatalogRepository) List(ctx context.Context) (products []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", listProductsSQL)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// Upsert inserts or updates products in one transaction. Slice order becomes
// catalog order.
func (r *CatalogRepository) Upsert(ctx context.Context, products []domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpsertProducts", upsertProductSQL)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for i, p := range products {
		args, err := productArgs(i, p)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, upsertProductSQL, args...); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Truncate deletes every product.
func (r *CatalogRepository) Truncate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, "TRUNCATE TABLE products"); err != nil {
		return fmt.Errorf("truncate products: %w", err)
	}
	return nil
}

type jsonColumns struct {
	images, tags, features, specifications, dimensions, colors, sizes []byte
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p  domain.Product
		js jsonColumns
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice, &js.images,
		&p.Category, &p.Subcategory, &p.Brand, &p.Rating, &p.ReviewCount, &p.Stock,
		&js.tags, &js.features, &js.specifications, &js.dimensions, &js.colors,
		&js.sizes, &p.IsNew, &p.IsFeatured, &p.IsBestSeller, &p.Discount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}

	targets := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"images", js.images, &p.Images},
		{"tags", js.tags, &p.Tags},
		{"features", js.features, &p.Features},
		{"specifications", js.specifications, &p.Specifications},
		{"dimensions", js.dimensions, &p.Dimensions},
		{"colors", js.colors, &p.Colors},
		{"sizes", js.sizes, &p.Sizes},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.dst); err != nil {
			return domain.Product{}, fmt.Errorf("unmarshal %s of product %s: %w", t.name, p.ID, err)
		}
	}

	// Empty JSON arrays decode to empty slices; keep variants nil so they
	// read as "no variants".
	if len(p.Colors) == 0 {
		p.Colors = nil
	}
	if len(p.Sizes) == 0 {
		p.Sizes = nil
	}
	return p, nil
}

func productArgs(position int, p domain.Product) ([]any, error) {
	encode := func(name string, v any) ([]byte, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s of product %s: %w", name, p.ID, err)
		}
		return b, nil
	}

	images, err := encode("images", nonNil(p.Images))
	if err != nil {
		return nil, err
	}
	tags, err := encode("tags", nonNil(p.Tags))
	if err != nil {
		return nil, err
	}
	features, err := encode("features", nonNil(p.Features))
	if err != nil {
		return nil, err
	}
	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	specifications, err := encode("specifications", specs)
	if err != nil {
		return nil, err
	}
	var dimensions []byte
	if p.Dimensions != nil {
		if dimensions, err = encode("dimensions", p.Dimensions); err != nil {
			return nil, err
		}
	}
	colors, err := encode("colors", nonNil(p.Colors))
	if err != nil {
		return nil, err
	}
	sizes, err := encode("sizes", nonNil(p.Sizes))
	if err != nil {
		return nil, err
	}

	return []any{
		p.ID, position, p.Name, p.Description, p.Price, p.OriginalPrice, images,
		p.Category, p.Subcategory, p.Brand, p.Rating, p.ReviewCount, p.Stock,
		tags, features, specifications, dimensions, colors, sizes,
		p.IsNew, p.IsFeatured, p.IsBestSeller, p.Discount, p.CreatedAt, p.UpdatedAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
