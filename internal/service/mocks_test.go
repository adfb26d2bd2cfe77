package service

import (
	"context"
	"sync"
	"time"

	"foodhub/internal/events"
	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Item, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

// MockStockLedger is a mock implementation of StockLedger.
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) Snapshot(ctx context.Context, ids []string) (map[string]model.StockLevel, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.StockLevel), args.Error(1)
}

func (m *MockStockLedger) LockItems(ctx context.Context, tx pgx.Tx, ids []string) (map[string]model.Item, error) {
	args := m.Called(ctx, tx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.Item), args.Error(1)
}

func (m *MockStockLedger) Reserve(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error) {
	args := m.Called(ctx, tx, itemID, qty)
	return args.Int(0), args.Error(1)
}

func (m *MockStockLedger) Release(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error) {
	args := m.Called(ctx, tx, itemID, qty)
	return args.Int(0), args.Error(1)
}

func (m *MockStockLedger) SetQuantity(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error) {
	args := m.Called(ctx, tx, itemID, qty)
	return args.Int(0), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, from model.OrderStatus, reason *string, at time.Time) error {
	args := m.Called(ctx, tx, id, from, reason, at)
	return args.Error(0)
}

func (m *MockOrderRepository) RecordStatusChange(ctx context.Context, tx pgx.Tx, change model.StatusChange) error {
	args := m.Called(ctx, tx, change)
	return args.Error(0)
}

// MockOrderCache is a mock implementation of cache.OrderCache.
type MockOrderCache struct {
	mock.Mock
}

func (m *MockOrderCache) Get(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderCache) Set(ctx context.Context, order *model.OrderResponse) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// memoryOrderCache keeps the copy with the latest UpdatedAt, the same rule
// the redis cache applies.
type memoryOrderCache struct {
	mu     sync.Mutex
	orders map[uuid.UUID]model.OrderResponse
}

func newMemoryOrderCache() *memoryOrderCache {
	return &memoryOrderCache{orders: make(map[uuid.UUID]model.OrderResponse)}
}

func (c *memoryOrderCache) Get(_ context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, ok := c.orders[id]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (c *memoryOrderCache) Set(_ context.Context, order *model.OrderResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.orders[order.ID]; ok && cur.UpdatedAt.After(order.UpdatedAt) {
		return nil
	}
	c.orders[order.ID] = *order
	return nil
}

func (c *memoryOrderCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.orders, id)
	return nil
}

// recordingPublisher keeps every envelope it is handed.
type recordingPublisher struct {
	mu   sync.Mutex
	sent []events.Envelope
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, env)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, env := range p.sent {
		out[i] = env.EventType
	}
	return out
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
