//go:build integration

package auctions_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infradb "github.com/aurelius/mintbid/internal/adapters/database"
	"github.com/aurelius/mintbid/internal/domain/auctions"
	"github.com/aurelius/mintbid/internal/domain/catalog"
	"github.com/aurelius/mintbid/internal/domain/orders"
	"github.com/aurelius/mintbid/pkg/database"
	"github.com/aurelius/mintbid/pkg/events"
	"github.com/aurelius/mintbid/pkg/testhelpers"
)

// seedUser inserts a user row so foreign keys on bids and auctions resolve
func seedUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, password_hash, full_name, role) VALUES ($1, $2, 'x', 'Test User', 'buyer')`,
		id, id.String()+"@example.com",
	)
	require.NoError(t, err, "Failed to seed user")
	return id
}

// seedProduct inserts an active auction-listed product
func seedProduct(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, sku, title, listing_type, status) VALUES ($1, $2, '1921 Morgan Dollar MS-65', 'auction', 'active')`,
		id, "SKU-"+id.String()[:8],
	)
	require.NoError(t, err, "Failed to seed product")
	return id
}

type testServices struct {
	Service     *auctions.Service
	TxManager   database.TransactionManager
	AuctionRepo auctions.AuctionRepository
	BidRepo     auctions.BidRepository
	OrderRepo   *infradb.PostgresOrderRepository
	ProductRepo *infradb.PostgresProductRepository
	OutboxRepo  events.OutboxRepository
}

func setupAuctionService(pool *pgxpool.Pool) *testServices {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	txManager := database.NewPostgresTransactionManager(pool, 5*time.Second)
	auctionRepo := infradb.NewPostgresAuctionRepository(pool)
	bidRepo := infradb.NewPostgresBidRepository(pool)
	orderRepo := infradb.NewPostgresOrderRepository(pool)
	productRepo := infradb.NewPostgresProductRepository(pool)
	outboxRepo := infradb.NewPostgresOutboxRepository(pool)
	service := auctions.NewService(txManager, auctionRepo, bidRepo, orderRepo, productRepo, outboxRepo, logger)

	return &testServices{
		Service:     service,
		TxManager:   txManager,
		AuctionRepo: auctionRepo,
		BidRepo:     bidRepo,
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
		OutboxRepo:  outboxRepo,
	}
}

func openAuction(t *testing.T, svc *testServices, productID, sellerID uuid.UUID, startPrice int64, opts func(*auctions.CreateAuctionCommand)) *auctions.Auction {
	t.Helper()
	cmd := auctions.CreateAuctionCommand{
		ProductID:    productID,
		SellerID:     sellerID,
		StartPrice:   startPrice,
		BidIncrement: 500,
		EndAt:        time.Now().Add(24 * time.Hour),
	}
	if opts != nil {
		opts(&cmd)
	}
	auction, err := svc.Service.CreateAuction(context.Background(), cmd)
	require.NoError(t, err, "CreateAuction should succeed")
	return auction
}

func pendingEvents(t *testing.T, svc *testServices, limit int) []*events.OutboxEvent {
	t.Helper()
	ctx := context.Background()
	tx, err := svc.TxManager.BeginTx(ctx)
	require.NoError(t, err)
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	pending, err := svc.OutboxRepo.GetPendingEvents(ctx, tx, limit)
	require.NoError(t, err)
	return pending
}

func TestAuctionService_PlaceBid_Success(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupAuctionService(pool)
	ctx := context.Background()

	sellerID := seedUser(t, pool)
	bidderID := seedUser(t, pool)
	productID := seedProduct(t, pool)
	auction := openAuction(t, svc, productID, sellerID, 100000, nil)

	bid, err := svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
		AuctionID: auction.ID,
		BidderID:  bidderID,
		Amount:    100000,
	})

	require.NoError(t, err, "PlaceBid should succeed")
	assert.Equal(t, auction.ID, bid.AuctionID)
	assert.Equal(t, int64(100000), bid.Amount)

	// Cached projection reflects the accepted bid
	updated, err := svc.Service.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), updated.CurrentBid)
	assert.Equal(t, 1, updated.BidCount)
	require.NotNil(t, updated.HighBidderID)
	assert.Equal(t, bidderID, *updated.HighBidderID)

	// Outbox event was written in the same transaction
	pending := pendingEvents(t, svc, 10)
	require.Len(t, pending, 1)
	assert.Equal(t, events.TypeBidPlaced, pending[0].EventType)
	assert.Equal(t, events.OutboxStatusPending, pending[0].Status)
}

func TestAuctionService_PlaceBid_BelowMinimum(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupAuctionService(pool)
	ctx := context.Background()

	sellerID := seedUser(t, pool)
	bidderID := seedUser(t, pool)
	otherBidderID := seedUser(t, pool)
	productID := seedProduct(t, pool)
	auction := openAuction(t, svc, productID, sellerID, 100000, nil)

	// First bid below start price
	_, err := svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
		AuctionID: auction.ID,
		BidderID:  bidderID,
		Amount:    99999,
	})
	require.ErrorIs(t, err, auctions.ErrOutbid)

	// Accept a bid at the start price, then reject one below bid + increment
	_, err = svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
		AuctionID: auction.ID,
		BidderID:  bidderID,
		Amount:    100000,
	})
	require.NoError(t, err)

	_, err = svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
		AuctionID: auction.ID,
		BidderID:  otherBidderID,
		Amount:    100400, // increment is 500
	})
	require.ErrorIs(t, err, auctions.ErrOutbid)
	assert.Contains(t, err.Error(), "100500", "error should carry the refreshed minimum")

	// Rejected bids leave no trace
	bids, err := svc.Service.ListBids(ctx, auction.ID, 10)
	require.NoError(t, err)
	assert.Len(t, bids, 1)
}

func TestAuctionService_PlaceBid_SellerCannotBid(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupAuctionService(pool)

	sellerID := seedUser(t, pool)
	productID := seedProduct(t, pool)
	auction := openAuction(t, svc, productID, sellerID, 100000, nil)

	_, err := svc.Service.PlaceBid(context.Background(), auctions.PlaceBidCommand{
		AuctionID: auction.ID,
		BidderID:  sellerID,
		Amount:    100000,
	})
	assert.ErrorIs(t, err, auctions.ErrSellerCannotBid)
}

func TestAuctionService_PlaceBid_BuyNowClosesAuction(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupAuctionService(pool)
	ctx := context.Background()

	sellerID := seedUser(t, pool)
	bidderID := seedUser(t, pool)
	productID := seedProduct(t, pool)

	buyNow := int64(250000)
	auction := openAuction(t, svc, productID, sellerID, 100000, func(cmd *auctions.CreateAuctionCommand) {
		cmd.BuyNowPrice = &buyNow
	})

	bid, err := svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
		AuctionID: auction.ID,
		BidderID:  bidderID,
		Amount:    250000,
	})
	require.NoError(t, err)

	// Auction closed sold in the same transaction
	closed, err := svc.Service.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, auctions.StatusClosedSold, closed.Status)

	// No further bids accepted
	_, err = svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
		AuctionID: auction.ID,
		BidderID:  seedUser(t, pool),
		Amount:    300000,
	})
	assert.ErrorIs(t, err, auctions.ErrAuctionClosed)

	// Order created for the winner at the buy-now amount
	winnerOrders, err := svc.OrderRepo.ListByBuyerID(ctx, bidderID, 10, 0)
	require.NoError(t, err)
	require.Len(t, winnerOrders, 1)
	assert.Equal(t, int64(250000), winnerOrders[0].Amount)
	assert.Equal(t, orders.StatusPendingPayment, winnerOrders[0].Status)
	require.NotNil(t, winnerOrders[0].AuctionID)
	assert.Equal(t, auction.ID, *winnerOrders[0].AuctionID)
	require.NotNil(t, winnerOrders[0].WinningBidID)
	assert.Equal(t, bid.ID, *winnerOrders[0].WinningBidID)

	// Product flipped to sold
	product, err := svc.ProductRepo.GetProductByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, catalog.ProductStatusSold, product.Status)

	// bid.placed plus auction.closed
	pending := pendingEvents(t, svc, 10)
	require.Len(t, pending, 2)
	types := []string{pending[0].EventType, pending[1].EventType}
	assert.Contains(t, types, events.TypeBidPlaced)
	assert.Contains(t, types, events.TypeAuctionClosed)
}

func TestAuctionService_CloseDue_SoldAndUnsold(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupAuctionService(pool)
	ctx := context.Background()

	sellerID := seedUser(t, pool)
	bidderID := seedUser(t, pool)

	// Auction with a bid above the reserve
	soldProductID := seedProduct(t, pool)
	reserve := int64(150000)
	soldAuction := openAuction(t, svc, soldProductID, sellerID, 100000, func(cmd *auctions.CreateAuctionCommand) {
		cmd.ReservePrice = &reserve
	})
	_, err := svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
		AuctionID: soldAuction.ID,
		BidderID:  bidderID,
		Amount:    160000,
	})
	require.NoError(t, err)

	// Auction with a bid below the reserve
	reservedProductID := seedProduct(t, pool)
	reservedAuction := openAuction(t, svc, reservedProductID, sellerID, 100000, func(cmd *auctions.CreateAuctionCommand) {
		cmd.ReservePrice = &reserve
	})
	_, err = svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
		AuctionID: reservedAuction.ID,
		BidderID:  bidderID,
		Amount:    120000,
	})
	require.NoError(t, err)

	// Auction with no bids at all
	unsoldProductID := seedProduct(t, pool)
	unsoldAuction := openAuction(t, svc, unsoldProductID, sellerID, 100000, nil)

	// Not yet due: the sweep is a no-op
	results, err := svc.Service.CloseDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, results)

	// Sweep after all three have ended
	results, err = svc.Service.CloseDue(ctx, time.Now().Add(25*time.Hour))
	require.NoError(t, err)
	require.Len(t, results, 3)

	byID := make(map[uuid.UUID]auctions.CloseResult, len(results))
	for _, result := range results {
		byID[result.AuctionID] = result
	}

	assert.Equal(t, auctions.StatusClosedSold, byID[soldAuction.ID].Status)
	assert.NotNil(t, byID[soldAuction.ID].OrderID)
	assert.Equal(t, auctions.StatusClosedUnsold, byID[reservedAuction.ID].Status, "reserve not met closes unsold")
	assert.Nil(t, byID[reservedAuction.ID].OrderID)
	assert.Equal(t, auctions.StatusClosedUnsold, byID[unsoldAuction.ID].Status)

	// Winner got an order for the high bid
	winnerOrders, err := svc.OrderRepo.ListByBuyerID(ctx, bidderID, 10, 0)
	require.NoError(t, err)
	require.Len(t, winnerOrders, 1)
	assert.Equal(t, int64(160000), winnerOrders[0].Amount)

	// A second sweep finds nothing: each auction closes exactly once
	results, err = svc.Service.CloseDue(ctx, time.Now().Add(26*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAuctionService_PlaceBid_ConcurrentBids(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupAuctionService(pool)
	ctx := context.Background()

	sellerID := seedUser(t, pool)
	productID := seedProduct(t, pool)
	auction := openAuction(t, svc, productID, sellerID, 50000, func(cmd *auctions.CreateAuctionCommand) {
		cmd.BidIncrement = 1000
	})

	numBids := 10
	bidders := make([]uuid.UUID, numBids)
	for i := range bidders {
		bidders[i] = seedUser(t, pool)
	}

	var wg sync.WaitGroup
	results := make(chan error, numBids)
	for i := 0; i < numBids; i++ {
		wg.Add(1)
		go func(bidderID uuid.UUID, amount int64) {
			defer wg.Done()
			_, err := svc.Service.PlaceBid(ctx, auctions.PlaceBidCommand{
				AuctionID: auction.ID,
				BidderID:  bidderID,
				Amount:    amount,
			})
			results <- err
		}(bidders[i], int64(60000+i*10000))
	}
	wg.Wait()
	close(results)

	var successCount int
	for err := range results {
		if err == nil {
			successCount++
		} else {
			assert.ErrorIs(t, err, auctions.ErrOutbid, "losing bids fail as outbid")
		}
	}
	t.Logf("Successful bids: %d of %d", successCount, numBids)
	require.GreaterOrEqual(t, successCount, 1)

	// The row lock serializes bids: the cache holds the maximum accepted
	// amount and the bid log matches the successes exactly.
	final, err := svc.Service.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60000+(numBids-1)*10000), final.CurrentBid)
	assert.Equal(t, successCount, final.BidCount)

	bids, err := svc.Service.ListBids(ctx, auction.ID, 100)
	require.NoError(t, err)
	assert.Len(t, bids, successCount)

	pending := pendingEvents(t, svc, 100)
	assert.Len(t, pending, successCount)
}
