package integration

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"foodhub/internal/cache"
	"foodhub/internal/config"
	"foodhub/internal/database"
	"foodhub/internal/events"
	"foodhub/internal/handler"
	"foodhub/internal/repository"
	"foodhub/internal/router"
	"foodhub/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestAPIKey is accepted by servers built with NewTestServer.
const TestAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// SetupTestDB starts a PostgreSQL container, connects to it and applies the
// schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	u, err := url.Parse(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("failed to parse port: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, config.DatabaseConfig{
		Host:            u.Hostname(),
		Port:            port,
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &TestDB{Container: postgresContainer, Pool: pool}
}

// SeedItem is a catalogue row inserted by SeedItems.
type SeedItem struct {
	ID       string
	Name     string
	Price    string
	Discount string
	Quantity int
	MinStock int
	Active   bool
}

// SeedItems inserts the given items.
func SeedItems(t *testing.T, pool *pgxpool.Pool, items ...SeedItem) {
	t.Helper()

	ctx := context.Background()
	for _, it := range items {
		discount := it.Discount
		if discount == "" {
			discount = "0"
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO items (id, name, unit, price, discount, quantity, min_stock_level, is_active)
			VALUES ($1, $2, 'piece', $3::numeric, $4::numeric, $5, $6, $7)`,
			it.ID, it.Name, it.Price, discount, it.Quantity, it.MinStock, it.Active,
		)
		if err != nil {
			t.Fatalf("failed to seed item %s: %v", it.ID, err)
		}
	}
}

// QuantityOf returns the on-hand quantity of an item.
func QuantityOf(t *testing.T, pool *pgxpool.Pool, id string) int {
	t.Helper()

	var qty int
	if err := pool.QueryRow(context.Background(), "SELECT quantity FROM items WHERE id = $1", id).Scan(&qty); err != nil {
		t.Fatalf("failed to read quantity of %s: %v", id, err)
	}
	return qty
}

// CountRows returns the number of rows in a table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// CleanupDB removes all data from the test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE order_status_history, order_items, orders, items")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// RecordingPublisher keeps every published event in memory.
type RecordingPublisher struct {
	mu   sync.Mutex
	sent []events.Envelope
}

func (p *RecordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, env)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Types returns the event types published so far, in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.sent))
	for i, env := range p.sent {
		types[i] = env.EventType
	}
	return types
}

// Reset forgets every recorded event.
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = nil
}

// NewTestServer wires the full HTTP stack over pool.
func NewTestServer(pool *pgxpool.Pool, publisher events.Publisher, orderCache cache.OrderCache) http.Handler {
	logger := zerolog.Nop()

	itemRepo := repository.NewItemRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	ledger := repository.NewStockLedger(pool, logger)

	opts := service.Options{TxTimeout: 5 * time.Second}
	orders := service.NewOrderService(orderRepo, ledger, publisher, orderCache, opts, logger)
	availability := service.NewAvailabilityService(ledger, opts, logger)
	inventory := service.NewInventoryService(orderRepo, ledger, publisher, opts, logger)

	return router.New(router.Handlers{
		Items:     handler.NewItemHandler(service.NewItemService(itemRepo, logger), logger),
		Orders:    handler.NewOrderHandler(orders, availability, logger),
		Inventory: handler.NewInventoryHandler(inventory, logger),
	}, TestAPIKey, 10*time.Second, logger)
}
