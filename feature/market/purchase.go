package market

import (
	"context"
	"fmt"
	"strings"

	"marketplace/core/apperr"
	"marketplace/feature/market/models"

	"github.com/shopspring/decimal"
)

// PurchaseItem is one listing and quantity in a purchase.
type PurchaseItem struct {
	ListingID string
	Quantity  int
}

// PurchaseInput is a buyer's request to buy listings from a single seller.
type PurchaseInput struct {
	Items []PurchaseItem
	Note  string
}

// Purchase validates the cart and hands it to the order workflow as an offer.
// Quantities are reserved by the order workflow, not here.
func (s *Service) Purchase(ctx context.Context, actor Actor, in PurchaseInput) (*OfferResult, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("At least one listing is required")
	}

	var (
		seller models.Seller
		cost   = decimal.Zero
		items  = make([]OfferItem, 0, len(in.Items))
		titles = make([]string, 0, len(in.Items))
		seen   = make(map[string]bool, len(in.Items))
	)
	for i, it := range in.Items {
		if it.Quantity < 1 {
			return nil, apperr.Validation("quantity must be at least 1")
		}
		if seen[it.ListingID] {
			return nil, apperr.Validation("Listing %s appears more than once", it.ListingID)
		}
		seen[it.ListingID] = true

		l, err := s.loadListing(ctx, s.store, it.ListingID)
		if err != nil {
			return nil, err
		}
		if err := s.canView(ctx, actor, l); err != nil {
			return nil, err
		}
		if l.Status != models.StatusActive {
			return nil, apperr.InvalidState("Listing %s is not active", l.ListingID)
		}
		switch l.SaleType {
		case models.SaleUnique, models.SaleMultiple:
		case models.SaleAuction:
			return nil, apperr.InvalidState("Auction listings cannot be purchased directly")
		case models.SaleAggregate:
			return nil, apperr.InvalidState("Listing %s has no seller", l.ListingID)
		default:
			return nil, fmt.Errorf("listing %s has unknown sale type %q", l.ListingID, l.SaleType)
		}
		if it.Quantity > l.QuantityAvailable {
			return nil, apperr.Validation("Insufficient quantity available for listing %s", l.ListingID)
		}

		if i == 0 {
			seller = l.Seller()
		} else if l.Seller() != seller {
			return nil, apperr.Validation("All listings must be from the same seller")
		}

		cost = cost.Add(l.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, OfferItem{ListingID: l.ListingID, Quantity: it.Quantity})
		titles = append(titles, s.listingTitle(ctx, l))
	}

	if seller.UserID != "" && seller.UserID == actor.UserID {
		return nil, apperr.PermissionDenied("You cannot buy your own listings")
	}

	return s.offers.CreateOffer(ctx, OfferRequest{
		CustomerID:  actor.UserID,
		Seller:      seller,
		Cost:        cost,
		Title:       "Market purchase: " + strings.Join(titles, ", "),
		Description: in.Note,
		Items:       items,
	})
}

func (s *Service) listingTitle(ctx context.Context, l *models.Listing) string {
	id, err := s.detailsIDFor(ctx, s.store, l)
	if err != nil {
		return l.ListingID
	}
	d, err := s.store.GetDetails(ctx, id)
	if err != nil {
		return l.ListingID
	}
	return d.Title
}
