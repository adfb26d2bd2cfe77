package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodhub/internal/cache"
	"foodhub/internal/events"
	"foodhub/internal/model"
	"foodhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	ledger    repository.StockLedger
	cache     cache.OrderCache
	tx        txRunner
	notify    notifier
	maxLines  int
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	ledger repository.StockLedger,
	publisher events.Publisher,
	orderCache cache.OrderCache,
	opts Options,
	logger zerolog.Logger,
) OrderService {
	opts = opts.withDefaults()
	logger = logger.With().Str("service", "order").Logger()

	return &orderService{
		orderRepo: orderRepo,
		ledger:    ledger,
		cache:     orderCache,
		tx:        txRunner{db: orderRepo, timeout: opts.TxTimeout, logger: logger},
		notify:    notifier{pub: publisher, producer: opts.Producer, logger: logger},
		maxLines:  opts.MaxBasketLines,
		logger:    logger,
	}
}

// placement is what one successful placement transaction produced.
type placement struct {
	order    model.Order
	items    []model.OrderItem
	lowStock []model.Item
}

// PlaceOrder reserves stock for every basket line and records the order.
func (s *orderService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.ErrEmptyBasket
	}
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return nil, model.ErrMissingCustomer
	}

	lines, err := validateBasket(req.Items, s.maxLines)
	if err != nil {
		s.logger.Warn().Err(err).Str("customer_id", customerID).Msg("rejected basket")
		return nil, err
	}

	var result placement
	err = s.tx.run(ctx, "place_order", func(ctx context.Context, tx pgx.Tx) error {
		var err error
		result, err = s.reserve(ctx, tx, customerID, req.Notes, lines)
		return err
	})
	if err != nil {
		s.logFailure(err, "failed to place order", customerID)
		return nil, err
	}

	resp := &model.OrderResponse{Order: result.order, Items: result.items}

	s.logger.Info().
		Str("order_id", resp.ID.String()).
		Str("customer_id", customerID).
		Int("item_count", resp.ItemCount).
		Str("total_amount", resp.TotalAmount.StringFixed(2)).
		Msg("order placed")

	s.announcePlacement(ctx, resp, result.lowStock)
	s.remember(ctx, resp)

	return resp, nil
}

// reserve runs inside the placement transaction: it locks the basket's items,
// validates every line against the locked rows and only then decrements.
func (s *orderService) reserve(ctx context.Context, tx pgx.Tx, customerID string, notes *string, lines []model.BasketLine) (placement, error) {
	locked, err := s.ledger.LockItems(ctx, tx, lineIDs(lines))
	if err != nil {
		return placement{}, err
	}

	var invalid []string
	var short []model.StockShortfall
	for _, l := range lines {
		item, ok := locked[l.ItemID]
		if !ok || !item.IsActive {
			invalid = append(invalid, l.ItemID)
			continue
		}
		if item.Quantity < l.Quantity {
			short = append(short, model.StockShortfall{
				ItemID:    l.ItemID,
				Requested: l.Quantity,
				Available: item.Quantity,
			})
		}
	}
	if len(invalid) > 0 {
		return placement{}, &model.InvalidItemError{ItemIDs: invalid}
	}
	if len(short) > 0 {
		return placement{}, &model.InsufficientStockError{Shortfalls: short}
	}

	now := time.Now().UTC()
	order := model.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Status:      model.StatusPlaced,
		TotalAmount: decimal.Zero,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	items := make([]model.OrderItem, 0, len(lines))
	var low []model.Item
	for i, l := range lines {
		item := locked[l.ItemID]

		remaining, err := s.ledger.Reserve(ctx, tx, l.ItemID, l.Quantity)
		if err != nil {
			return placement{}, err
		}

		unitPrice := item.UnitPrice()
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		items = append(items, model.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			LineNo:     i + 1,
			ItemID:     item.ID,
			ItemName:   item.Name,
			Quantity:   l.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
			Unit:       item.Unit,
		})
		order.ItemCount += l.Quantity
		order.TotalAmount = order.TotalAmount.Add(lineTotal)

		after := item
		after.Quantity = remaining
		if after.CrossesMinStock(item.Quantity) {
			low = append(low, after)
		}
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, &order); err != nil {
		return placement{}, err
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return placement{}, err
	}

	return placement{order: order, items: items, lowStock: low}, nil
}

// CancelOrder returns the order's stock and marks it cancelled.
func (s *orderService) CancelOrder(ctx context.Context, req *model.CancelOrderRequest) (*model.OrderResponse, error) {
	if req == nil || req.OrderID == uuid.Nil {
		return nil, model.ErrOrderNotFound
	}
	id := req.OrderID

	var (
		resp     *model.OrderResponse
		from     model.OrderStatus
		released bool
	)
	err := s.tx.run(ctx, "cancel_order", func(ctx context.Context, tx pgx.Tx) error {
		released = false

		order, items, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		resp = &model.OrderResponse{Order: *order, Items: items}
		from = order.Status

		if order.Status.Terminal() {
			if order.Status == model.StatusCancelled {
				return nil
			}
			return fmt.Errorf("%w: order %s is %s", model.ErrInvalidTransition, id, order.Status)
		}
		if !model.CanTransition(order.Status, model.StatusCancelled) {
			return fmt.Errorf("%w: order %s is %s", model.ErrInvalidTransition, id, order.Status)
		}

		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ItemID
		}
		if _, err := s.ledger.LockItems(ctx, tx, ids); err != nil {
			return err
		}
		for _, it := range items {
			if _, err := s.ledger.Release(ctx, tx, it.ItemID, it.Quantity); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		if err := s.orderRepo.MarkCancelled(ctx, tx, id, order.Status, req.Reason, now); err != nil {
			return err
		}
		if err := s.orderRepo.RecordStatusChange(ctx, tx, model.StatusChange{
			OrderID:    id,
			FromStatus: order.Status,
			ToStatus:   model.StatusCancelled,
			Reason:     req.Reason,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		resp.Status = model.StatusCancelled
		resp.CancelReason = req.Reason
		resp.CancelledAt = &now
		resp.UpdatedAt = now
		released = true
		return nil
	})
	if err != nil {
		s.logFailure(err, "failed to cancel order", id.String())
		return nil, err
	}

	if !released {
		s.logger.Debug().Str("order_id", id.String()).Msg("order already cancelled")
		return resp, nil
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from_status", string(from)).
		Int("lines", len(resp.Items)).
		Msg("order cancelled")

	payload := events.OrderCancelled{
		OrderID:    id.String(),
		FromStatus: string(from),
		Released:   make([]events.ReleasedLine, len(resp.Items)),
	}
	if req.Reason != nil {
		payload.Reason = *req.Reason
	}
	for i, it := range resp.Items {
		payload.Released[i] = events.ReleasedLine{ItemID: it.ItemID, Quantity: it.Quantity}
	}
	s.notify.emit(ctx, events.TypeOrderCancelled, id.String(), payload)
	s.remember(ctx, resp)

	return resp, nil
}

// GetByID retrieves an order with its lines, preferring the cache.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("order cache unavailable")
	}
	if cached != nil {
		return cached, nil
	}

	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	resp := &model.OrderResponse{Order: *order, Items: items}
	s.remember(ctx, resp)
	return resp, nil
}

func (s *orderService) announcePlacement(ctx context.Context, resp *model.OrderResponse, low []model.Item) {
	orderID := resp.ID.String()

	payload := events.OrderPlaced{
		OrderID:     orderID,
		CustomerID:  resp.CustomerID,
		ItemCount:   resp.ItemCount,
		TotalAmount: resp.TotalAmount,
		Lines:       make([]events.OrderLine, len(resp.Items)),
	}
	for i, it := range resp.Items {
		payload.Lines[i] = events.OrderLine{
			ItemID:     it.ItemID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}
	s.notify.emit(ctx, events.TypeOrderPlaced, orderID, payload)

	for _, item := range low {
		s.logger.Info().
			Str("item_id", item.ID).
			Int("quantity", item.Quantity).
			Int("min_stock_level", item.MinStockLevel).
			Msg("item fell below minimum stock")
		s.notify.emit(ctx, events.TypeInventoryLowStock, item.ID, events.LowStock{
			ItemID:        item.ID,
			Quantity:      item.Quantity,
			MinStockLevel: item.MinStockLevel,
			OrderID:       orderID,
		})
	}
}

func (s *orderService) remember(ctx context.Context, resp *model.OrderResponse) {
	if err := s.cache.Set(ctx, resp); err != nil {
		s.logger.Warn().Err(err).Str("order_id", resp.ID.String()).Msg("failed to cache order")
		// An older copy must not outlive a failed refresh.
		if err := s.cache.Invalidate(ctx, resp.ID); err != nil {
			s.logger.Warn().Err(err).Str("order_id", resp.ID.String()).Msg("failed to evict cached order")
		}
	}
}

// logFailure logs business rejections at warn and everything else at error.
func (s *orderService) logFailure(err error, msg, subject string) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		s.logger.Warn().Err(err).Str("code", domainErr.Code).Str("subject", subject).Msg(msg)
		return
	}
	s.logger.Error().Err(err).Str("subject", subject).Msg(msg)
}
