package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func floatPtr(f float64) *float64 { return &f }

var now = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

var columns = []string{
	"id", "name", "description", "price", "original_price", "images",
	"category", "subcategory", "brand", "rating", "review_count", "stock",
	"tags", "features", "specifications", "dimensions", "colors", "sizes",
	"is_new", "is_featured", "is_best_seller", "discount", "created_at", "updated_at",
}

func sampleProduct() domain.Product {
	return domain.Product{
		ID:             "1",
		Name:           "Wireless Headphones",
		Description:    "Noise cancelling over-ear headphones",
		Price:          99.99,
		OriginalPrice:  floatPtr(129.99),
		Images:         []string{"https://img.example.com/1.jpg"},
		Category:       "electronics",
		Subcategory:    "audio",
		Brand:          "SoundMax",
		Rating:         4.5,
		ReviewCount:    128,
		Stock:          15,
		Tags:           []string{"wireless"},
		Features:       []string{"ANC"},
		Specifications: map[string]string{"battery": "30h"},
		Dimensions:     &domain.Dimensions{Width: 18, Height: 20, Depth: 8, Weight: 0.25},
		Colors:         []string{"Black", "Silver"},
		IsNew:          true,
		IsFeatured:     true,
		Discount:       floatPtr(23),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func productRow(p domain.Product) []any {
	enc := func(v any) []byte {
		b, _ := json.Marshal(v)
		return b
	}
	var dims []byte
	if p.Dimensions != nil {
		dims = enc(p.Dimensions)
	}
	return []any{
		p.ID, p.Name, p.Description, p.Price, p.OriginalPrice, enc(p.Images),
		p.Category, p.Subcategory, p.Brand, p.Rating, p.ReviewCount, p.Stock,
		enc(p.Tags), enc(p.Features), enc(p.Specifications), dims,
		enc(nonNil(p.Colors)), enc(nonNil(p.Sizes)),
		p.IsNew, p.IsFeatured, p.IsBestSeller, p.Discount, p.CreatedAt, p.UpdatedAt,
	}
}

func TestCatalogRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	plain := domain.Product{
		ID: "2", Name: "Cotton T-Shirt", Price: 24.99, Category: "clothing",
		Images: []string{}, Tags: []string{}, Features: []string{},
		Specifications: map[string]string{}, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("SELECT .+ FROM products").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(productRow(sampleProduct())...).
			AddRow(productRow(plain)...))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, sampleProduct(), got[0])
	assert.Nil(t, got[1].Dimensions)
	assert.Nil(t, got[1].Colors, "empty variants read back as nil")
	assert.Nil(t, got[1].Sizes)
	assert.Nil(t, got[1].OriginalPrice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_List_Empty(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").WillReturnRows(pgxmock.NewRows(columns))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCatalogRepository_List_QueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query products")
}

func TestCatalogRepository_List_BadJSON(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	row := productRow(sampleProduct())
	row[5] = []byte("{oops")
	mock.ExpectQuery("SELECT .+ FROM products").WillReturnRows(pgxmock.NewRows(columns).AddRow(row...))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal images of product 1")
}

func TestCatalogRepository_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	p := sampleProduct()
	args, err := productArgs(0, p)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	second := p
	second.ID = "2"
	second.Dimensions = nil
	require.NoError(t, repo.Upsert(context.Background(), []domain.Product{p, second}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_Upsert_RollsBackOnError(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").WillReturnError(errors.New("check constraint"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), []domain.Product{sampleProduct()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert product 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_Truncate(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectExec("TRUNCATE TABLE products").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))

	require.NoError(t, repo.Truncate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductArgs_NilCollectionsEncodeEmpty(t *testing.T) {
	args, err := productArgs(3, domain.Product{ID: "x"})
	require.NoError(t, err)

	assert.Equal(t, 3, args[1])
	assert.Equal(t, []byte("[]"), args[6], "images")
	assert.Equal(t, []byte("{}"), args[15], "specifications")
	assert.Nil(t, args[16], "dimensions")
	assert.Equal(t, []byte("[]"), args[17], "colors")
}

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(Migrations(), "*.up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_products.up.sql"}, names)
}
