package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/orders"
	pkgdb "github.com/aurelius/mintbid/pkg/database"
)

// PostgresOrderRepository implements orders.Repository using pgx
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

const orderColumns = `id, buyer_id, seller_id, product_id, auction_id, winning_bid_id,
	amount_cents, status, created_at, updated_at`

// CreateOrder inserts an order outside any transaction (fixed-price checkout)
func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, order *orders.Order) error {
	return r.insertOrder(ctx, r.pool, order)
}

// CreateOrderTx inserts an order inside an existing transaction, used by the
// auction close path so the order and the close commit atomically.
func (r *PostgresOrderRepository) CreateOrderTx(ctx context.Context, tx pgx.Tx, order *orders.Order) error {
	return r.insertOrder(ctx, tx, order)
}

func (r *PostgresOrderRepository) insertOrder(ctx context.Context, db pkgdb.DBTX, order *orders.Order) error {
	query := `
		INSERT INTO orders (id, buyer_id, seller_id, product_id, auction_id, winning_bid_id,
			amount_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.Exec(ctx, query,
		order.ID,
		order.BuyerID,
		order.SellerID,
		order.ProductID,
		order.AuctionID,
		order.WinningBidID,
		order.Amount,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order by its ID
func (r *PostgresOrderRepository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*orders.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o orders.Order
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&o.ID,
		&o.BuyerID,
		&o.SellerID,
		&o.ProductID,
		&o.AuctionID,
		&o.WinningBidID,
		&o.Amount,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// ListByBuyerID retrieves a buyer's orders, newest first
func (r *PostgresOrderRepository) ListByBuyerID(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*orders.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []*orders.Order
	for rows.Next() {
		var o orders.Order
		if err := rows.Scan(
			&o.ID,
			&o.BuyerID,
			&o.SellerID,
			&o.ProductID,
			&o.AuctionID,
			&o.WinningBidID,
			&o.Amount,
			&o.Status,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return result, nil
}

// UpdateStatus updates an order's fulfilment status
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status orders.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.pool.Exec(ctx, query, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
