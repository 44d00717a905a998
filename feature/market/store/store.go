package store

import (
	"context"
	"errors"
	"time"

	"marketplace/feature/market/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// CatalogRow is a unique listing linked to a catalog item.
type CatalogRow struct {
	Listing models.Listing
	Unique  models.UniqueListing
	Details models.ListingDetails
}

// Store is the persistence boundary of the market.
type Store interface {
	// Transaction runs fn with a store bound to a single database transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateListing(ctx context.Context, l *models.Listing) error
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	// LockListing loads a listing and holds a row lock on it until the
	// surrounding transaction ends.
	LockListing(ctx context.Context, id string) (*models.Listing, error)
	GetListings(ctx context.Context, ids []string) ([]models.Listing, error)
	UpdateListing(ctx context.Context, id string, updates map[string]any) error

	CreateDetails(ctx context.Context, d *models.ListingDetails) error
	GetDetails(ctx context.Context, id string) (*models.ListingDetails, error)
	UpdateDetails(ctx context.Context, id string, updates map[string]any) error

	CreateUnique(ctx context.Context, u *models.UniqueListing) error
	GetUnique(ctx context.Context, listingID string) (*models.UniqueListing, error)
	DeleteUnique(ctx context.Context, listingID string) error

	CreateAggregate(ctx context.Context, a *models.AggregateListing) error
	GetAggregate(ctx context.Context, listingID string) (*models.AggregateListing, error)
	// ListCatalogListings returns the active unique listings whose details
	// reference gameItemID.
	ListCatalogListings(ctx context.Context, gameItemID string) ([]CatalogRow, error)

	CreateMultiple(ctx context.Context, m *models.MultipleListing) error
	GetMultiple(ctx context.Context, id string) (*models.MultipleListing, error)
	UpdateMultiple(ctx context.Context, id string, updates map[string]any) error
	// FindMultipleByDefault returns the group whose default is listingID.
	FindMultipleByDefault(ctx context.Context, listingID string) (*models.MultipleListing, error)

	CreateMembership(ctx context.Context, m *models.MultipleListingMembership) error
	GetMembership(ctx context.Context, listingID string) (*models.MultipleListingMembership, error)
	ListMembers(ctx context.Context, multipleID string) ([]models.MultipleListingMembership, error)
	MoveMembership(ctx context.Context, listingID, multipleID string) error
	DeleteMembership(ctx context.Context, listingID string) error

	CreateAuction(ctx context.Context, a *models.AuctionDetails) error
	GetAuction(ctx context.Context, listingID string) (*models.AuctionDetails, error)

	// ListBids returns the bids of a listing, highest first.
	ListBids(ctx context.Context, listingID string) ([]models.Bid, error)
	DeleteBidsByBidder(ctx context.Context, listingID, bidderID string) error
	CreateBid(ctx context.Context, b *models.Bid) error

	CreateBuyOrder(ctx context.Context, o *models.BuyOrder) error
	GetBuyOrder(ctx context.Context, id string) (*models.BuyOrder, error)
	// ListOpenBuyOrders returns unfulfilled orders for an item expiring after now.
	ListOpenBuyOrders(ctx context.Context, gameItemID string, now time.Time) ([]models.BuyOrder, error)
	// MarkBuyOrderFulfilled sets the fulfilment time only if it is still unset
	// and the order has not expired or been cancelled by at.
	// It reports whether this call won.
	MarkBuyOrderFulfilled(ctx context.Context, id string, at time.Time) (bool, error)
	ClearBuyOrderFulfilled(ctx context.Context, id string) error
	SetBuyOrderExpiry(ctx context.Context, id string, expiry time.Time) error

	ListPhotos(ctx context.Context, detailsID string) ([]models.ListingPhoto, error)
	AddPhoto(ctx context.Context, detailsID, resourceID string) error
	RemovePhoto(ctx context.Context, detailsID, resourceID string) error
}
