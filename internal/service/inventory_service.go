package service

import (
	"context"
	"strings"

	"foodhub/internal/events"
	"foodhub/internal/model"
	"foodhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// inventoryService implements InventoryService.
type inventoryService struct {
	ledger repository.StockLedger
	tx     txRunner
	notify notifier
	logger zerolog.Logger
}

// NewInventoryService creates a new stock correction service.
func NewInventoryService(
	db repository.TxBeginner,
	ledger repository.StockLedger,
	publisher events.Publisher,
	opts Options,
	logger zerolog.Logger,
) InventoryService {
	opts = opts.withDefaults()
	logger = logger.With().Str("service", "inventory").Logger()

	return &inventoryService{
		ledger: ledger,
		tx:     txRunner{db: db, timeout: opts.TxTimeout, logger: logger},
		notify: notifier{pub: publisher, producer: opts.Producer, logger: logger},
		logger: logger,
	}
}

// BulkUpdate sets absolute quantities for the listed items. A later entry for
// the same item overrides an earlier one. Either every update applies or none.
func (s *inventoryService) BulkUpdate(ctx context.Context, req *model.BulkUpdateRequest) (*model.BulkUpdateResponse, error) {
	if req == nil || len(req.Updates) == 0 {
		return nil, model.ErrEmptyUpdate
	}

	updates, err := normaliseUpdates(req.Updates)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ItemID
	}

	var (
		changes []model.StockChange
		low     []model.Item
	)
	err = s.tx.run(ctx, "bulk_update", func(ctx context.Context, tx pgx.Tx) error {
		changes, low = nil, nil

		locked, err := s.ledger.LockItems(ctx, tx, ids)
		if err != nil {
			return err
		}
		var missing []string
		for _, id := range ids {
			if _, ok := locked[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return &model.InvalidItemError{ItemIDs: missing}
		}

		for _, u := range updates {
			previous, err := s.ledger.SetQuantity(ctx, tx, u.ItemID, u.Quantity)
			if err != nil {
				return err
			}
			changes = append(changes, model.StockChange{ItemID: u.ItemID, Previous: previous, Current: u.Quantity})

			after := locked[u.ItemID]
			after.Quantity = u.Quantity
			if after.IsActive && after.CrossesMinStock(previous) {
				low = append(low, after)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Int("updates", len(updates)).Msg("bulk stock update failed")
		return nil, err
	}

	s.logger.Info().Int("updates", len(changes)).Msg("stock corrected")

	for _, c := range changes {
		if c.Previous == c.Current {
			continue
		}
		s.notify.emit(ctx, events.TypeInventoryAdjusted, c.ItemID, events.StockAdjusted{
			ItemID:   c.ItemID,
			Previous: c.Previous,
			Current:  c.Current,
		})
	}
	for _, item := range low {
		s.notify.emit(ctx, events.TypeInventoryLowStock, item.ID, events.LowStock{
			ItemID:        item.ID,
			Quantity:      item.Quantity,
			MinStockLevel: item.MinStockLevel,
		})
	}

	return &model.BulkUpdateResponse{Changes: changes}, nil
}

// normaliseUpdates validates entries and collapses duplicates, keeping the
// position of the first entry and the quantity of the last.
func normaliseUpdates(in []model.StockUpdate) ([]model.StockUpdate, error) {
	out := make([]model.StockUpdate, 0, len(in))
	index := make(map[string]int, len(in))

	for _, u := range in {
		u.ItemID = strings.TrimSpace(u.ItemID)
		if u.ItemID == "" {
			return nil, model.ErrInvalidItem
		}
		if u.Quantity < 0 {
			return nil, model.ErrNegativeQuantity
		}
		if u.Quantity > model.MaxQuantity {
			return nil, model.ErrQuantityTooLarge
		}
		if i, ok := index[u.ItemID]; ok {
			out[i].Quantity = u.Quantity
			continue
		}
		index[u.ItemID] = len(out)
		out = append(out, u)
	}
	return out, nil
}
