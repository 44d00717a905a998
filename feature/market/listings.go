package market

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace/core/apperr"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateListingInput is the payload for a new unique or auction listing.
type CreateListingInput struct {
	SaleType            string
	Price               decimal.Decimal
	Title               string
	Description         string
	ItemType            string
	ItemName            string
	QuantityAvailable   int
	Photos              []string
	Status              models.ListingStatus
	Internal            bool
	ContractorID        string
	MinimumBidIncrement decimal.Decimal
	EndTime             time.Time
}

// ListingPatch carries the optional fields of a listing update. Nil fields are
// left unchanged. An empty ItemName clears the catalog link.
type ListingPatch struct {
	Price             *decimal.Decimal
	QuantityAvailable *int
	Status            *models.ListingStatus
	Title             *string
	Description       *string
	ItemType          *string
	ItemName          *string
	Internal          *bool
	Photos            []string
}

// onlyPriceOrQuantity reports whether p touches nothing but price and quantity.
func (p ListingPatch) onlyPriceOrQuantity() bool {
	return p.Status == nil && p.Title == nil && p.Description == nil && p.ItemType == nil &&
		p.ItemName == nil && p.Internal == nil && p.Photos == nil
}

func (s *Service) expiresAt(now time.Time) time.Time {
	return now.AddDate(0, s.cfg.ListingLifetimeMonths, 0)
}

// CreateListing creates a unique ("sale") or auction listing.
func (s *Service) CreateListing(ctx context.Context, actor Actor, in CreateListingInput) (*models.UniqueComplete, error) {
	saleType, err := models.ParseCreateSaleType(in.SaleType)
	if err != nil {
		return nil, apperr.Validation("Invalid sale_type %q", in.SaleType)
	}
	if err := s.validateCreate(saleType, in); err != nil {
		return nil, err
	}

	seller := sellerFor(actor, in.ContractorID)
	if seller.IsZero() {
		return nil, apperr.PermissionDenied("A seller is required")
	}
	if err := s.canManage(ctx, actor, seller); err != nil {
		return nil, err
	}

	var gameItemID *string
	if name := strings.TrimSpace(in.ItemName); name != "" {
		item, err := s.catalogItemByName(ctx, name)
		if err != nil {
			return nil, err
		}
		gameItemID = &item.ID
	}

	plan, err := s.planPhotos(ctx, nil, in.Photos)
	if err != nil {
		return nil, err
	}

	now := s.now()
	userID, contractorID := seller.Columns()
	listing := &models.Listing{
		ListingID:          uuid.NewString(),
		SaleType:           saleType,
		Price:              in.Price,
		QuantityAvailable:  in.QuantityAvailable,
		Status:             in.Status,
		UserSellerID:       userID,
		ContractorSellerID: contractorID,
		Internal:           in.Internal,
		Timestamp:          now,
		Expiration:         s.expiresAt(now),
	}
	details := &models.ListingDetails{
		DetailsID:   uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		ItemType:    in.ItemType,
		GameItemID:  gameItemID,
	}

	err = s.applyPhotos(ctx, details.DetailsID, plan, func(tx store.Store) error {
		if err := tx.CreateListing(ctx, listing); err != nil {
			return err
		}
		if err := tx.CreateDetails(ctx, details); err != nil {
			return err
		}
		if err := tx.CreateUnique(ctx, &models.UniqueListing{
			ListingID:    listing.ListingID,
			DetailsID:    details.DetailsID,
			AcceptOffers: true,
		}); err != nil {
			return err
		}
		if saleType == models.SaleAuction {
			return tx.CreateAuction(ctx, &models.AuctionDetails{
				ListingID:           listing.ListingID,
				MinimumBidIncrement: in.MinimumBidIncrement,
				EndTime:             in.EndTime.UTC(),
				Status:              models.AuctionActive,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.uniqueComplete(ctx, s.store, listing)
}

func (s *Service) validateCreate(saleType models.SaleType, in CreateListingInput) error {
	one := decimal.NewFromInt(1)
	switch {
	case strings.TrimSpace(in.Title) == "":
		return apperr.Validation("title is required")
	case strings.TrimSpace(in.Description) == "":
		return apperr.Validation("description is required")
	case strings.TrimSpace(in.ItemType) == "":
		return apperr.Validation("item_type is required")
	case in.Price.IsNegative():
		return apperr.Validation("price must not be negative")
	case in.QuantityAvailable < 1:
		return apperr.Validation("quantity_available must be at least 1")
	case len(in.Photos) == 0:
		return apperr.Validation("at least one photo is required")
	case in.Status != models.StatusActive && in.Status != models.StatusInactive:
		return apperr.Validation("status must be active or inactive")
	}

	if saleType == models.SaleAuction {
		switch {
		case in.Price.LessThan(one):
			return apperr.Validation("auction starting price must be at least 1")
		case in.MinimumBidIncrement.LessThan(one):
			return apperr.Validation("minimum_bid_increment must be at least 1")
		case !in.EndTime.After(s.now()):
			return apperr.Validation("end_time must be in the future")
		}
	}
	return nil
}

// detailsIDFor returns the details row describing a listing.
func (s *Service) detailsIDFor(ctx context.Context, st store.Store, l *models.Listing) (string, error) {
	switch l.SaleType {
	case models.SaleUnique, models.SaleAuction:
		u, err := st.GetUnique(ctx, l.ListingID)
		if err != nil {
			return "", missingRow(err, "unique", l.ListingID)
		}
		return u.DetailsID, nil
	case models.SaleMultiple:
		m, err := st.GetMembership(ctx, l.ListingID)
		if err != nil {
			return "", missingRow(err, "membership", l.ListingID)
		}
		return m.DetailsID, nil
	case models.SaleAggregate:
		return "", apperr.InvalidState("Aggregate listings cannot be edited")
	default:
		return "", errors.New("unknown sale type " + string(l.SaleType))
	}
}

// UpdateListing applies a patch to a listing. Archived listings only accept
// price and quantity changes, and only from an admin.
func (s *Service) UpdateListing(ctx context.Context, actor Actor, listingID string, patch ListingPatch) (models.CompleteListing, error) {
	l, err := s.loadListing(ctx, s.store, listingID)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(ctx, actor, l.Seller()); err != nil {
		return nil, err
	}
	if l.Status == models.StatusArchived && !(actor.Admin && patch.onlyPriceOrQuantity()) {
		return nil, apperr.InvalidState("Cannot update archived listing")
	}

	listingUpdates := map[string]any{}
	if patch.Price != nil {
		if l.SaleType == models.SaleAuction {
			return nil, apperr.InvalidState("Cannot change the price of an auction")
		}
		if patch.Price.IsNegative() {
			return nil, apperr.Validation("price must not be negative")
		}
		listingUpdates["price"] = *patch.Price
	}
	if patch.QuantityAvailable != nil {
		if *patch.QuantityAvailable < 0 {
			return nil, apperr.Validation("quantity_available must not be negative")
		}
		listingUpdates["quantity_available"] = *patch.QuantityAvailable
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperr.Validation("Invalid status %q", *patch.Status)
		}
		listingUpdates["status"] = *patch.Status
	}
	if patch.Internal != nil {
		listingUpdates["internal"] = *patch.Internal
	}

	detailsUpdates := map[string]any{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, apperr.Validation("title must not be empty")
		}
		detailsUpdates["title"] = *patch.Title
	}
	if patch.Description != nil {
		detailsUpdates["description"] = *patch.Description
	}
	if patch.ItemType != nil {
		if strings.TrimSpace(*patch.ItemType) == "" {
			return nil, apperr.Validation("item_type must not be empty")
		}
		detailsUpdates["item_type"] = *patch.ItemType
	}
	if patch.ItemName != nil {
		if name := strings.TrimSpace(*patch.ItemName); name == "" {
			detailsUpdates["game_item_id"] = nil
		} else {
			item, err := s.catalogItemByName(ctx, name)
			if err != nil {
				return nil, err
			}
			detailsUpdates["game_item_id"] = item.ID
		}
	}

	var detailsID string
	if len(detailsUpdates) > 0 || patch.Photos != nil {
		if detailsID, err = s.detailsIDFor(ctx, s.store, l); err != nil {
			return nil, err
		}
	}

	write := func(tx store.Store) error {
		if err := tx.UpdateListing(ctx, l.ListingID, listingUpdates); err != nil {
			return err
		}
		return tx.UpdateDetails(ctx, detailsID, detailsUpdates)
	}

	if patch.Photos != nil {
		plan, err := s.PlanPhotos(ctx, detailsID, patch.Photos)
		if err != nil {
			return nil, err
		}
		if err := s.applyPhotos(ctx, detailsID, plan, write); err != nil {
			return nil, err
		}
	} else if err := s.store.Transaction(ctx, write); err != nil {
		return nil, err
	}

	return s.GetComplete(ctx, actor, l.ListingID)
}

// UpdateQuantity sets the available quantity of a listing.
func (s *Service) UpdateQuantity(ctx context.Context, actor Actor, listingID string, quantity int) (models.CompleteListing, error) {
	return s.UpdateListing(ctx, actor, listingID, ListingPatch{QuantityAvailable: &quantity})
}

// RefreshListing extends a listing's expiration to a full lifetime from now.
// A listing can only be refreshed once its expiration is at least the grace
// period short of a full lifetime.
func (s *Service) RefreshListing(ctx context.Context, actor Actor, listingID string) (*models.Listing, error) {
	l, err := s.loadListing(ctx, s.store, listingID)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(ctx, actor, l.Seller()); err != nil {
		return nil, err
	}
	if l.Status == models.StatusArchived {
		return nil, apperr.InvalidState("Cannot refresh archived listing")
	}

	now := s.now()
	threshold := now.AddDate(0, s.cfg.ListingLifetimeMonths, -s.cfg.RefreshGraceDays)
	if l.Expiration.After(threshold) {
		return nil, apperr.InvalidState("Listing was refreshed too recently")
	}

	expiration := s.expiresAt(now)
	if err := s.store.UpdateListing(ctx, l.ListingID, map[string]any{"expiration": expiration}); err != nil {
		return nil, err
	}
	l.Expiration = expiration
	return l, nil
}

// ArchiveListing moves a listing to the archived status.
func (s *Service) ArchiveListing(ctx context.Context, actor Actor, listingID string) (*models.Listing, error) {
	l, err := s.loadListing(ctx, s.store, listingID)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(ctx, actor, l.Seller()); err != nil {
		return nil, err
	}
	if l.Status == models.StatusArchived {
		return nil, apperr.InvalidState("Listing is already archived")
	}
	if err := s.store.UpdateListing(ctx, l.ListingID, map[string]any{"status": models.StatusArchived}); err != nil {
		return nil, err
	}
	l.Status = models.StatusArchived
	return l, nil
}
