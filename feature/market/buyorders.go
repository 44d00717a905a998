package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/core/apperr"
	"marketplace/feature/contractor"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateBuyOrderInput is a standing offer to buy a catalog item.
type CreateBuyOrderInput struct {
	GameItemID string
	Quantity   int
	Price      decimal.Decimal
	Expiry     time.Time
}

// CreateBuyOrder places a buy order for actor.
func (s *Service) CreateBuyOrder(ctx context.Context, actor Actor, in CreateBuyOrderInput) (*models.BuyOrder, error) {
	if _, err := s.catalogItem(ctx, in.GameItemID); err != nil {
		return nil, err
	}
	now := s.now()
	switch {
	case in.Quantity < 1:
		return nil, apperr.Validation("quantity must be at least 1")
	case in.Price.LessThan(decimal.NewFromInt(1)):
		return nil, apperr.Validation("price must be at least 1")
	case !in.Expiry.After(now):
		return nil, apperr.Validation("expiry must be in the future")
	}

	order := &models.BuyOrder{
		BuyOrderID: ulid.Make().String(),
		GameItemID: in.GameItemID,
		BuyerID:    actor.UserID,
		Quantity:   in.Quantity,
		Price:      in.Price,
		Expiry:     in.Expiry.UTC(),
	}
	if err := s.store.CreateBuyOrder(ctx, order); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BuyOrdersCreated.Inc()
	}
	return order, nil
}

func (s *Service) loadBuyOrder(ctx context.Context, id string) (*models.BuyOrder, error) {
	o, err := s.store.GetBuyOrder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Buy order %s not found", id)
	}
	return o, err
}

// FulfillBuyOrder sells into a buy order on behalf of actor, or of contractorID
// when given. The order is marked fulfilled before the offer is created; if the
// offer cannot be created the mark is reverted.
func (s *Service) FulfillBuyOrder(ctx context.Context, actor Actor, buyOrderID, contractorID string) (*OfferResult, error) {
	order, err := s.loadBuyOrder(ctx, buyOrderID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !order.Open(now) {
		return nil, apperr.InvalidState("Invalid buy order")
	}
	if order.BuyerID == actor.UserID {
		return nil, apperr.Validation("You cannot fulfill your own buy order")
	}

	seller := sellerFor(actor, contractorID)
	if contractorID != "" {
		ok, err := s.perms.HasPermission(ctx, contractorID, actor.UserID, contractor.ManageOrders)
		if err != nil {
			return nil, fmt.Errorf("permission check failed: %w", err)
		}
		if !ok {
			return nil, apperr.PermissionDenied("You are not authorized to fulfill orders for this contractor")
		}
	}

	itemName := order.GameItemID
	if item, err := s.catalog.GetCatalogItem(ctx, order.GameItemID); err == nil {
		itemName = item.Name
	}

	marked, err := s.store.MarkBuyOrderFulfilled(ctx, order.BuyOrderID, now)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, apperr.InvalidState("Invalid buy order")
	}

	req := OfferRequest{
		CustomerID: order.BuyerID,
		Seller:     seller,
		Cost:       order.Price.Mul(decimal.NewFromInt(int64(order.Quantity))),
		Title:      fmt.Sprintf("Buy order for %s", itemName),
		Description: fmt.Sprintf("Fulfilling buy order for %dx %s at %s each",
			order.Quantity, itemName, order.Price.StringFixed(2)),
		BuyOrderID: order.BuyOrderID,
	}
	res, err := s.offers.CreateOffer(ctx, req)
	if err != nil {
		if cerr := s.store.ClearBuyOrderFulfilled(ctx, order.BuyOrderID); cerr != nil {
			s.logger.Error("Failed to revert buy order fulfilment",
				zap.String("buy_order_id", order.BuyOrderID), zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to create offer for buy order %s: %w", order.BuyOrderID, err)
	}

	if s.metrics != nil {
		s.metrics.BuyOrdersFulfilled.Inc()
	}
	return res, nil
}

// CancelBuyOrder expires an open buy order owned by actor.
func (s *Service) CancelBuyOrder(ctx context.Context, actor Actor, buyOrderID string) (*models.BuyOrder, error) {
	order, err := s.loadBuyOrder(ctx, buyOrderID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !order.Open(now) || order.BuyerID != actor.UserID {
		return nil, apperr.InvalidState("Invalid buy order")
	}
	if err := s.store.SetBuyOrderExpiry(ctx, order.BuyOrderID, now); err != nil {
		return nil, err
	}
	order.Expiry = now
	return order, nil
}

// ListBuyOrders returns the open buy orders of a catalog item.
func (s *Service) ListBuyOrders(ctx context.Context, gameItemID string) ([]models.BuyOrder, error) {
	if _, err := s.catalogItem(ctx, gameItemID); err != nil {
		return nil, err
	}
	orders, err := s.store.ListOpenBuyOrders(ctx, gameItemID, s.now())
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.BuyOrder{}
	}
	return orders, nil
}
