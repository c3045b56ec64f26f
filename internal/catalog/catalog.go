// Package catalog answers product queries for the storefront: filtered and
// sorted listings, slug lookups, and related-product suggestions. The cart
// treats this data as read-only reference.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
)

// ErrNotFound is returned when a product, category or brand does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Filter narrows and orders a product listing. Zero values mean "no filter".
type Filter struct {
	Search        string
	CategorySlug  string
	BrandSlug     string
	PriceRange    string // one of the priceBuckets keys
	FeaturedOnly  bool
	AvailableOnly bool
	SortBy        string // one of the sortColumns keys; default newest first
}

// priceBuckets are the storefront's fixed price-range facets.
var priceBuckets = map[string]string{
	"0-50":    "p.price < 50",
	"50-100":  "p.price >= 50 AND p.price < 100",
	"100-200": "p.price >= 100 AND p.price < 200",
	"200-500": "p.price >= 200 AND p.price < 500",
	"500+":    "p.price >= 500",
}

// sortColumns whitelists the ORDER BY expressions reachable from the API.
var sortColumns = map[string]string{
	"price":       "p.price ASC",
	"-price":      "p.price DESC",
	"name":        "p.name ASC",
	"-name":       "p.name DESC",
	"created_at":  "p.created_at ASC",
	"-created_at": "p.created_at DESC",
}

type Service struct {
	db  *sql.DB
	log *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

const productColumns = `p.id, p.category_id, p.brand_id, p.name, p.slug, p.description,
	p.price, p.original_price, p.stock, p.available, p.featured,
	p.created_at, p.updated_at,
	COALESCE(c.name, ''), COALESCE(b.name, '')`

const productJoins = ` FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN brands b ON b.id = p.brand_id`

// List returns the products matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Product, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT " + productColumns + productJoins)
	queryBuilder.WriteString(" WHERE 1=1")

	if f.Search != "" {
		queryBuilder.WriteString(" AND (p.name LIKE ? OR p.description LIKE ? OR c.name LIKE ? OR b.name LIKE ?)")
		term := "%" + f.Search + "%"
		args = append(args, term, term, term, term)
	}
	if f.CategorySlug != "" {
		queryBuilder.WriteString(" AND c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if f.BrandSlug != "" {
		queryBuilder.WriteString(" AND b.slug = ?")
		args = append(args, f.BrandSlug)
	}
	if cond, ok := priceBuckets[f.PriceRange]; ok {
		queryBuilder.WriteString(" AND " + cond)
	}
	if f.FeaturedOnly {
		queryBuilder.WriteString(" AND p.featured = 1")
	}
	if f.AvailableOnly {
		queryBuilder.WriteString(" AND p.available = 1 AND p.stock > 0")
	}

	orderBy, ok := sortColumns[f.SortBy]
	if !ok {
		orderBy = "p.created_at DESC"
	}
	queryBuilder.WriteString(" ORDER BY " + orderBy)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetBySlug returns one product by its slug.
func (s *Service) GetBySlug(ctx context.Context, productSlug string) (models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+productJoins+" WHERE p.slug = ?", productSlug)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

// GetByID returns one product by id. This is the product-store contract the
// cart consumes.
func (s *Service) GetByID(ctx context.Context, id int64) (models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+productJoins+" WHERE p.id = ?", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

// Related returns up to limit available products sharing the product's
// category, excluding the product itself.
func (s *Service) Related(ctx context.Context, product models.Product, limit int) ([]models.Product, error) {
	if product.CategoryID == nil || limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+productJoins+
			` WHERE p.category_id = ? AND p.available = 1 AND p.id != ?
			  ORDER BY p.created_at DESC LIMIT ?`,
		*product.CategoryID, product.ID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (models.Product, error) {
	var p models.Product
	var createdAt, updatedAt int64
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.BrandID, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.OriginalPrice, &p.Stock, &p.Available, &p.Featured,
		&createdAt, &updatedAt,
		&p.CategoryName, &p.BrandName,
	)
	if err != nil {
		return models.Product{}, err
	}
	p.CreatedAt = database.FromMillis(createdAt)
	p.UpdatedAt = database.FromMillis(updatedAt)
	return p, nil
}

// ProductInput carries the fields needed to create a product. The slug is
// derived from the name.
type ProductInput struct {
	Name          string
	Description   string
	CategoryID    *int64
	BrandID       *int64
	Price         decimal.Decimal
	OriginalPrice decimal.NullDecimal
	Stock         int
	Available     bool
	Featured      bool
}

// CreateProduct inserts a product, generating its slug from the name.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (models.Product, error) {
	now := time.Now()
	productSlug := slug.Make(input.Name)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO products (category_id, brand_id, name, slug, description,
		                       price, original_price, stock, available, featured,
		                       created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.CategoryID, input.BrandID, input.Name, productSlug, input.Description,
		input.Price, input.OriginalPrice, input.Stock, input.Available, input.Featured,
		database.ToMillis(now), database.ToMillis(now))
	if err != nil {
		return models.Product{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Product{}, err
	}
	s.log.Info("product created", zap.Int64("product_id", id), zap.String("slug", productSlug))

	return models.Product{
		ID:            id,
		CategoryID:    input.CategoryID,
		BrandID:       input.BrandID,
		Name:          input.Name,
		Slug:          productSlug,
		Description:   input.Description,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Stock:         input.Stock,
		Available:     input.Available,
		Featured:      input.Featured,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

// CreateCategory inserts a category with a slug derived from the name.
func (s *Service) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	now := time.Now()
	categorySlug := slug.Make(name)
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, slug, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, categorySlug, database.ToMillis(now), database.ToMillis(now))
	if err != nil {
		return models.Category{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{ID: id, Name: name, Slug: categorySlug, CreatedAt: now.UTC(), UpdatedAt: now.UTC()}, nil
}

// CreateBrand inserts a brand with a slug derived from the name.
func (s *Service) CreateBrand(ctx context.Context, name string) (models.Brand, error) {
	now := time.Now()
	brandSlug := slug.Make(name)
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO brands (name, slug, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, brandSlug, database.ToMillis(now), database.ToMillis(now))
	if err != nil {
		return models.Brand{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Brand{}, err
	}
	return models.Brand{ID: id, Name: name, Slug: brandSlug, CreatedAt: now.UTC(), UpdatedAt: now.UTC()}, nil
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var createdAt, updatedAt int64
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = database.FromMillis(createdAt)
		c.UpdatedAt = database.FromMillis(updatedAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListBrands returns all brands ordered by name.
func (s *Service) ListBrands(ctx context.Context) ([]models.Brand, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM brands ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []models.Brand
	for rows.Next() {
		var b models.Brand
		var createdAt, updatedAt int64
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		b.CreatedAt = database.FromMillis(createdAt)
		b.UpdatedAt = database.FromMillis(updatedAt)
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// GetCategoryBySlug returns one category by slug.
func (s *Service) GetCategoryBySlug(ctx context.Context, categorySlug string) (models.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM categories WHERE slug = ?`, categorySlug)
	var c models.Category
	var createdAt, updatedAt int64
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, err
	}
	c.CreatedAt = database.FromMillis(createdAt)
	c.UpdatedAt = database.FromMillis(updatedAt)
	return c, nil
}
