package service

import (
	"context"
	"fmt"

	"foodhub/internal/model"
	"foodhub/internal/repository"

	"github.com/rs/zerolog"
)

// availabilityService implements AvailabilityService on a ledger snapshot.
type availabilityService struct {
	ledger   repository.StockLedger
	maxLines int
	logger   zerolog.Logger
}

// NewAvailabilityService creates a new availability checker.
func NewAvailabilityService(ledger repository.StockLedger, opts Options, logger zerolog.Logger) AvailabilityService {
	opts = opts.withDefaults()
	return &availabilityService{
		ledger:   ledger,
		maxLines: opts.MaxBasketLines,
		logger:   logger.With().Str("service", "availability").Logger(),
	}
}

// Check reports a verdict per basket line. The answer is advisory: stock may
// move before an order is placed.
func (s *availabilityService) Check(ctx context.Context, req *model.AvailabilityRequest) (*model.AvailabilityResponse, error) {
	if req == nil {
		return nil, model.ErrEmptyBasket
	}

	lines, err := validateBasket(req.Items, s.maxLines)
	if err != nil {
		return nil, err
	}

	levels, err := s.ledger.Snapshot(ctx, lineIDs(lines))
	if err != nil {
		s.logger.Error().Err(err).Int("lines", len(lines)).Msg("failed to read stock snapshot")
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}

	resp := &model.AvailabilityResponse{
		Available: true,
		Lines:     make([]model.LineAvailability, len(lines)),
	}
	for i, l := range lines {
		verdict := model.LineAvailability{ItemID: l.ItemID, Requested: l.Quantity}

		lvl, ok := levels[l.ItemID]
		switch {
		case !ok:
			verdict.Reason = model.ReasonNotFound
		case !lvl.IsActive:
			verdict.InStock = lvl.Quantity
			verdict.Reason = model.ReasonInactive
		case lvl.Quantity < l.Quantity:
			verdict.InStock = lvl.Quantity
			verdict.Reason = model.ReasonInsufficientStock
		default:
			verdict.InStock = lvl.Quantity
			verdict.Available = true
		}

		if !verdict.Available {
			resp.Available = false
		}
		resp.Lines[i] = verdict
	}

	s.logger.Debug().
		Int("lines", len(lines)).
		Bool("available", resp.Available).
		Msg("availability checked")

	return resp, nil
}
