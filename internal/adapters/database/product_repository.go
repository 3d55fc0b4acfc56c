package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/catalog"
)

// PostgresProductRepository implements catalog.Repository using pgx
type PostgresProductRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProductRepository creates a new PostgreSQL product repository
func NewPostgresProductRepository(pool *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool}
}

const productColumns = `id, sku, title, description, price_cents, metal, weight_grams,
	purity, category, listing_type, status, images, client_id, created_at, updated_at`

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.Metal,
		&p.WeightGrams,
		&p.Purity,
		&p.Category,
		&p.ListingType,
		&p.Status,
		&p.Images,
		&p.ClientID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct creates a new product
func (r *PostgresProductRepository) CreateProduct(ctx context.Context, product *catalog.Product) error {
	query := `
		INSERT INTO products (id, sku, title, description, price_cents, metal, weight_grams,
			purity, category, listing_type, status, images, client_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.SKU,
		product.Title,
		product.Description,
		product.Price,
		product.Metal,
		product.WeightGrams,
		product.Purity,
		product.Category,
		product.ListingType,
		product.Status,
		product.Images,
		product.ClientID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetProductByID retrieves a product by its ID
func (r *PostgresProductRepository) GetProductByID(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.pool.QueryRow(ctx, query, productID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// GetProductBySKU retrieves a product by SKU
func (r *PostgresProductRepository) GetProductBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	product, err := scanProduct(r.pool.QueryRow(ctx, query, sku))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// UpdateProduct updates a product's editable fields
func (r *PostgresProductRepository) UpdateProduct(ctx context.Context, product *catalog.Product) error {
	query := `
		UPDATE products
		SET title = $1, description = $2, price_cents = $3, category = $4,
			images = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.pool.Exec(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.Category,
		product.Images,
		product.Status,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// UpdateStatus updates a product's status
func (r *PostgresProductRepository) UpdateStatus(ctx context.Context, productID uuid.UUID, status catalog.ProductStatus) error {
	query := `UPDATE products SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.pool.Exec(ctx, query, status, productID)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// MarkProductSold flips the product to sold within a transaction
func (r *PostgresProductRepository) MarkProductSold(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	query := `UPDATE products SET status = 'sold', updated_at = NOW() WHERE id = $1`
	result, err := tx.Exec(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("failed to mark product sold: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// Search retrieves active products matching the facet filters.
// The WHERE clause is built dynamically from the non-zero filters.
func (r *PostgresProductRepository) Search(ctx context.Context, query catalog.SearchQuery) ([]*catalog.Product, error) {
	var (
		conditions = []string{"status = 'active'"}
		args       []any
	)

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if query.Metal != "" {
		conditions = append(conditions, "metal = "+addArg(query.Metal))
	}
	if query.Category != "" {
		conditions = append(conditions, "category = "+addArg(query.Category))
	}
	if query.ListingType != "" {
		conditions = append(conditions, "listing_type = "+addArg(query.ListingType))
	}
	if query.MinPrice > 0 {
		conditions = append(conditions, "price_cents >= "+addArg(query.MinPrice))
	}
	if query.MaxPrice > 0 {
		conditions = append(conditions, "price_cents <= "+addArg(query.MaxPrice))
	}
	if query.Text != "" {
		placeholder := addArg("%" + query.Text + "%")
		conditions = append(conditions, "(title ILIKE "+placeholder+" OR description ILIKE "+placeholder+")")
	}

	orderBy := "created_at DESC"
	switch query.Sort {
	case catalog.SortPriceAsc:
		orderBy = "price_cents ASC"
	case catalog.SortPriceDesc:
		orderBy = "price_cents DESC"
	}

	sql := fmt.Sprintf(
		`SELECT %s FROM products WHERE %s ORDER BY %s LIMIT %s OFFSET %s`,
		productColumns,
		strings.Join(conditions, " AND "),
		orderBy,
		addArg(query.Limit),
		addArg(query.Offset),
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListByClientID retrieves products consigned by a client
func (r *PostgresProductRepository) ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*catalog.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query client products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]*catalog.Product, error) {
	var result []*catalog.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return result, nil
}
