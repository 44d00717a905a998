package market

import (
	"context"
	"errors"
	"fmt"

	"marketplace/core/apperr"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetComplete resolves a listing into its complete view by sale type.
func (s *Service) GetComplete(ctx context.Context, actor Actor, listingID string) (models.CompleteListing, error) {
	l, err := s.loadListing(ctx, s.store, listingID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, actor, l); err != nil {
		return nil, err
	}

	switch l.SaleType {
	case models.SaleUnique, models.SaleAuction:
		return s.uniqueComplete(ctx, s.store, l)
	case models.SaleMultiple:
		m, err := s.store.GetMembership(ctx, l.ListingID)
		if err != nil {
			return nil, missingRow(err, "membership", l.ListingID)
		}
		return s.multipleComplete(ctx, s.store, actor, m.MultipleID)
	case models.SaleAggregate:
		a, err := s.store.GetAggregate(ctx, l.ListingID)
		if err != nil {
			return nil, missingRow(err, "aggregate link", l.ListingID)
		}
		return s.aggregateComplete(ctx, a.GameItemID)
	default:
		return nil, fmt.Errorf("listing %s has unknown sale type %q", l.ListingID, l.SaleType)
	}
}

// GetMultiple resolves a group by its id. Members the actor may not see are left out.
func (s *Service) GetMultiple(ctx context.Context, actor Actor, multipleID string) (*models.MultipleComplete, error) {
	return s.multipleComplete(ctx, s.store, actor, multipleID)
}

// GetAggregate resolves the catalog view of a game item.
func (s *Service) GetAggregate(ctx context.Context, gameItemID string) (*models.AggregateComplete, error) {
	return s.aggregateComplete(ctx, gameItemID)
}

// missingRow reports a listing whose shape rows are inconsistent with its sale type.
func missingRow(err error, what, listingID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("listing %s has no %s row", listingID, what)
	}
	return err
}

func (s *Service) uniqueComplete(ctx context.Context, st store.Store, l *models.Listing) (*models.UniqueComplete, error) {
	u, err := st.GetUnique(ctx, l.ListingID)
	if err != nil {
		return nil, missingRow(err, "unique", l.ListingID)
	}
	d, err := st.GetDetails(ctx, u.DetailsID)
	if err != nil {
		return nil, missingRow(err, "details", l.ListingID)
	}

	view := &models.UniqueComplete{
		Listing: *l,
		Details: *d,
		Unique:  *u,
		Photos:  s.photoLinks(ctx, st, d.DetailsID),
	}

	if l.SaleType == models.SaleAuction {
		a, err := st.GetAuction(ctx, l.ListingID)
		if err != nil {
			return nil, missingRow(err, "auction details", l.ListingID)
		}
		bids, err := st.ListBids(ctx, l.ListingID)
		if err != nil {
			return nil, err
		}
		price := currentPrice(l.Price, bids)
		view.Auction = a
		view.Bids = bids
		view.CurrentPrice = &price
	}
	return view, nil
}

func (s *Service) multipleComplete(ctx context.Context, st store.Store, actor Actor, multipleID string) (*models.MultipleComplete, error) {
	m, err := st.GetMultiple(ctx, multipleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Multiple listing %s not found", multipleID)
	}
	if err != nil {
		return nil, err
	}
	d, err := st.GetDetails(ctx, m.DetailsID)
	if err != nil {
		return nil, missingRow(err, "details", m.MultipleID)
	}

	members, err := st.ListMembers(ctx, multipleID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(members))
	for i, mem := range members {
		ids[i] = mem.MultipleListingID
	}
	listings, err := st.GetListings(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Listing, len(listings))
	for _, l := range listings {
		byID[l.ListingID] = l
	}

	view := &models.MultipleComplete{
		Multiple: *m,
		Details:  *d,
		Photos:   s.photoLinks(ctx, st, d.DetailsID),
		Members:  make([]models.MemberView, 0, len(members)),
	}
	for _, mem := range members {
		l, ok := byID[mem.MultipleListingID]
		if !ok {
			continue
		}
		if err := s.canView(ctx, actor, &l); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				continue
			}
			return nil, err
		}
		md, err := st.GetDetails(ctx, mem.DetailsID)
		if err != nil {
			return nil, missingRow(err, "details", mem.MultipleListingID)
		}
		view.Members = append(view.Members, models.MemberView{
			Listing: l,
			Details: *md,
			Photos:  s.photoLinks(ctx, st, md.DetailsID),
		})
	}
	return view, nil
}

func (s *Service) aggregateComplete(ctx context.Context, gameItemID string) (*models.AggregateComplete, error) {
	item, err := s.catalogItem(ctx, gameItemID)
	if err != nil {
		return nil, err
	}

	view := &models.AggregateComplete{
		GameItemID: item.ID,
		Name:       item.Name,
		Photos:     []string{},
		Listings:   []models.AggregateItem{},
	}

	if item.DetailsID != "" {
		d, err := s.store.GetDetails(ctx, item.DetailsID)
		switch {
		case err == nil:
			view.Details = *d
			view.Photos = s.photoLinks(ctx, s.store, d.DetailsID)
		case errors.Is(err, store.ErrNotFound):
			view.Details = models.ListingDetails{DetailsID: item.DetailsID, Title: item.Name, ItemType: item.ItemType}
		default:
			return nil, err
		}
	}

	rows, err := s.store.ListCatalogListings(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.Listing.Internal {
			continue
		}
		view.Listings = append(view.Listings, models.AggregateItem{
			Listing: r.Listing,
			Details: r.Details,
			Photos:  s.photoLinks(ctx, s.store, r.Details.DetailsID),
		})
	}

	orders, err := s.store.ListOpenBuyOrders(ctx, item.ID, s.now())
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.BuyOrder{}
	}
	view.BuyOrders = orders
	return view, nil
}

// photoLinks resolves the photos of a details row. Photos the CDN cannot
// resolve are logged and left out.
func (s *Service) photoLinks(ctx context.Context, st store.Store, detailsID string) []string {
	links := []string{}
	photos, err := st.ListPhotos(ctx, detailsID)
	if err != nil {
		s.logger.Warn("Failed to load photos", zap.String("details_id", detailsID), zap.Error(err))
		return links
	}
	for _, p := range photos {
		link, err := s.resources.GetFileLinkResource(ctx, p.ResourceID)
		if err != nil {
			s.logger.Warn("Dropping unresolvable photo",
				zap.String("details_id", detailsID),
				zap.String("resource_id", p.ResourceID),
				zap.Error(err))
			continue
		}
		links = append(links, link)
	}
	return links
}

// currentPrice is max(price, highest bid).
func currentPrice(price decimal.Decimal, bids []models.Bid) decimal.Decimal {
	current := price
	for _, b := range bids {
		if b.Bid.GreaterThan(current) {
			current = b.Bid
		}
	}
	return current
}
