package market

import (
	"context"

	"marketplace/core/apperr"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlaceBid records a bid on an auction listing. The listing row is locked for
// the whole check-and-insert so concurrent bids on one listing serialise.
func (s *Service) PlaceBid(ctx context.Context, actor Actor, listingID string, amount decimal.Decimal) (*models.Bid, error) {
	var bid models.Bid
	var listing *models.Listing

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		l, err := s.lockListing(ctx, tx, listingID)
		if err != nil {
			return err
		}
		if l.SaleType != models.SaleAuction {
			return apperr.InvalidState("Listing is not an auction")
		}
		if l.Status != models.StatusActive {
			return apperr.InvalidState("Listing is not active")
		}

		auction, err := tx.GetAuction(ctx, l.ListingID)
		if err != nil {
			return missingRow(err, "auction details", l.ListingID)
		}
		bids, err := tx.ListBids(ctx, l.ListingID)
		if err != nil {
			return err
		}

		now := s.now()
		if auction.Status == models.AuctionConcluded || auction.EndTime.Before(now) {
			return apperr.InvalidState("Auction is over")
		}

		minimum := currentPrice(l.Price, bids).Add(auction.MinimumBidIncrement)
		if amount.LessThan(minimum) {
			return apperr.Validation("Bid must be at least %s", minimum.StringFixed(2))
		}
		if l.UserSellerID != nil && *l.UserSellerID == actor.UserID {
			return apperr.PermissionDenied("You cannot bid on your own listing")
		}

		if err := tx.DeleteBidsByBidder(ctx, l.ListingID, actor.UserID); err != nil {
			return err
		}
		bid = models.Bid{
			BidID:        ulid.Make().String(),
			ListingID:    l.ListingID,
			UserBidderID: actor.UserID,
			Bid:          amount,
			Timestamp:    now,
		}
		listing = l
		return tx.CreateBid(ctx, &bid)
	})
	if err != nil {
		s.countRejectedBid(err)
		return nil, err
	}

	s.countPlacedBid()
	s.notifyBid(ctx, listing, bid)
	return &bid, nil
}

// notifyBid resolves the listing view and hands it to the notifier. Failures
// are logged only.
func (s *Service) notifyBid(ctx context.Context, l *models.Listing, bid models.Bid) {
	if s.notifier == nil {
		return
	}
	log := s.logger.With(zap.String("listing_id", l.ListingID), zap.String("bid_id", bid.BidID))

	view, err := s.uniqueComplete(ctx, s.store, l)
	if err != nil {
		log.Warn("Failed to resolve listing for bid notification", zap.Error(err))
		return
	}
	if err := s.notifier.NotifyBid(ctx, view, bid); err != nil {
		log.Warn("Failed to send bid notification", zap.Error(err))
	}
}
