package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"marketplace/core/database"
	"marketplace/feature/market/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store on db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the market tables.
func Migrate(db *gorm.DB) error {
	return database.Migrate(db, models.All()...)
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateListing(ctx context.Context, l *models.Listing) error {
	if err := s.conn(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (s *GormStore) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	var l models.Listing
	if err := s.conn(ctx).Where("listing_id = ?", id).First(&l).Error; err != nil {
		return nil, notFound(err, "listing")
	}
	return &l, nil
}

func (s *GormStore) LockListing(ctx context.Context, id string) (*models.Listing, error) {
	q := s.conn(ctx)
	if database.SupportsRowLocks(s.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var l models.Listing
	if err := q.Where("listing_id = ?", id).First(&l).Error; err != nil {
		return nil, notFound(err, "listing")
	}
	return &l, nil
}

func (s *GormStore) GetListings(ctx context.Context, ids []string) ([]models.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Listing
	if err := s.conn(ctx).Where("listing_id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	return out, nil
}

func (s *GormStore) UpdateListing(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := s.conn(ctx).Model(&models.Listing{}).Where("listing_id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update listing %s: %w", id, res.Error)
	}
	return nil
}

func (s *GormStore) CreateDetails(ctx context.Context, d *models.ListingDetails) error {
	if err := s.conn(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create details: %w", err)
	}
	return nil
}

func (s *GormStore) GetDetails(ctx context.Context, id string) (*models.ListingDetails, error) {
	var d models.ListingDetails
	if err := s.conn(ctx).Where("details_id = ?", id).First(&d).Error; err != nil {
		return nil, notFound(err, "details")
	}
	return &d, nil
}

func (s *GormStore) UpdateDetails(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := s.conn(ctx).Model(&models.ListingDetails{}).Where("details_id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update details %s: %w", id, err)
	}
	return nil
}

func (s *GormStore) CreateUnique(ctx context.Context, u *models.UniqueListing) error {
	if err := s.conn(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create unique listing: %w", err)
	}
	return nil
}

func (s *GormStore) GetUnique(ctx context.Context, listingID string) (*models.UniqueListing, error) {
	var u models.UniqueListing
	if err := s.conn(ctx).Where("listing_id = ?", listingID).First(&u).Error; err != nil {
		return nil, notFound(err, "unique listing")
	}
	return &u, nil
}

func (s *GormStore) DeleteUnique(ctx context.Context, listingID string) error {
	if err := s.conn(ctx).Where("listing_id = ?", listingID).Delete(&models.UniqueListing{}).Error; err != nil {
		return fmt.Errorf("failed to delete unique listing %s: %w", listingID, err)
	}
	return nil
}

func (s *GormStore) CreateAggregate(ctx context.Context, a *models.AggregateListing) error {
	if err := s.conn(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create aggregate listing: %w", err)
	}
	return nil
}

func (s *GormStore) GetAggregate(ctx context.Context, listingID string) (*models.AggregateListing, error) {
	var a models.AggregateListing
	if err := s.conn(ctx).Where("listing_id = ?", listingID).First(&a).Error; err != nil {
		return nil, notFound(err, "aggregate listing")
	}
	return &a, nil
}

func (s *GormStore) ListCatalogListings(ctx context.Context, gameItemID string) ([]CatalogRow, error) {
	var details []models.ListingDetails
	if err := s.conn(ctx).Where("game_item_id = ?", gameItemID).Find(&details).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog details: %w", err)
	}
	if len(details) == 0 {
		return nil, nil
	}

	detailsByID := make(map[string]models.ListingDetails, len(details))
	detailIDs := make([]string, 0, len(details))
	for _, d := range details {
		detailsByID[d.DetailsID] = d
		detailIDs = append(detailIDs, d.DetailsID)
	}

	var uniques []models.UniqueListing
	if err := s.conn(ctx).Where("details_id IN ?", detailIDs).Find(&uniques).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog uniques: %w", err)
	}
	if len(uniques) == 0 {
		return nil, nil
	}

	uniqueByListing := make(map[string]models.UniqueListing, len(uniques))
	listingIDs := make([]string, 0, len(uniques))
	for _, u := range uniques {
		uniqueByListing[u.ListingID] = u
		listingIDs = append(listingIDs, u.ListingID)
	}

	var listings []models.Listing
	err := s.conn(ctx).
		Where("listing_id IN ? AND sale_type = ? AND status = ?", listingIDs, models.SaleUnique, models.StatusActive).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog listings: %w", err)
	}

	rows := make([]CatalogRow, 0, len(listings))
	for _, l := range listings {
		u := uniqueByListing[l.ListingID]
		rows = append(rows, CatalogRow{Listing: l, Unique: u, Details: detailsByID[u.DetailsID]})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Listing.Price.LessThan(rows[j].Listing.Price)
	})
	return rows, nil
}

func (s *GormStore) CreateMultiple(ctx context.Context, m *models.MultipleListing) error {
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create multiple listing: %w", err)
	}
	return nil
}

func (s *GormStore) GetMultiple(ctx context.Context, id string) (*models.MultipleListing, error) {
	var m models.MultipleListing
	if err := s.conn(ctx).Where("multiple_id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "multiple listing")
	}
	return &m, nil
}

func (s *GormStore) UpdateMultiple(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := s.conn(ctx).Model(&models.MultipleListing{}).Where("multiple_id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update multiple listing %s: %w", id, err)
	}
	return nil
}

func (s *GormStore) FindMultipleByDefault(ctx context.Context, listingID string) (*models.MultipleListing, error) {
	var m models.MultipleListing
	if err := s.conn(ctx).Where("default_listing_id = ?", listingID).First(&m).Error; err != nil {
		return nil, notFound(err, "multiple listing")
	}
	return &m, nil
}

func (s *GormStore) CreateMembership(ctx context.Context, m *models.MultipleListingMembership) error {
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (s *GormStore) GetMembership(ctx context.Context, listingID string) (*models.MultipleListingMembership, error) {
	var m models.MultipleListingMembership
	if err := s.conn(ctx).Where("multiple_listing_id = ?", listingID).First(&m).Error; err != nil {
		return nil, notFound(err, "membership")
	}
	return &m, nil
}

func (s *GormStore) ListMembers(ctx context.Context, multipleID string) ([]models.MultipleListingMembership, error) {
	var out []models.MultipleListingMembership
	err := s.conn(ctx).Where("multiple_id = ?", multipleID).Order("multiple_listing_id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load members of %s: %w", multipleID, err)
	}
	return out, nil
}

func (s *GormStore) MoveMembership(ctx context.Context, listingID, multipleID string) error {
	err := s.conn(ctx).Model(&models.MultipleListingMembership{}).
		Where("multiple_listing_id = ?", listingID).
		Update("multiple_id", multipleID).Error
	if err != nil {
		return fmt.Errorf("failed to move membership of %s: %w", listingID, err)
	}
	return nil
}

func (s *GormStore) DeleteMembership(ctx context.Context, listingID string) error {
	err := s.conn(ctx).Where("multiple_listing_id = ?", listingID).Delete(&models.MultipleListingMembership{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete membership of %s: %w", listingID, err)
	}
	return nil
}

func (s *GormStore) CreateAuction(ctx context.Context, a *models.AuctionDetails) error {
	if err := s.conn(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create auction details: %w", err)
	}
	return nil
}

func (s *GormStore) GetAuction(ctx context.Context, listingID string) (*models.AuctionDetails, error) {
	var a models.AuctionDetails
	if err := s.conn(ctx).Where("listing_id = ?", listingID).First(&a).Error; err != nil {
		return nil, notFound(err, "auction details")
	}
	return &a, nil
}

func (s *GormStore) ListBids(ctx context.Context, listingID string) ([]models.Bid, error) {
	var bids []models.Bid
	if err := s.conn(ctx).Where("listing_id = ?", listingID).Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("failed to load bids: %w", err)
	}
	// Ordered in Go: decimal columns compare as text on some drivers.
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Bid.GreaterThan(bids[j].Bid)
	})
	return bids, nil
}

func (s *GormStore) DeleteBidsByBidder(ctx context.Context, listingID, bidderID string) error {
	err := s.conn(ctx).Where("listing_id = ? AND user_bidder_id = ?", listingID, bidderID).Delete(&models.Bid{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete previous bid: %w", err)
	}
	return nil
}

func (s *GormStore) CreateBid(ctx context.Context, b *models.Bid) error {
	if err := s.conn(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

func (s *GormStore) CreateBuyOrder(ctx context.Context, o *models.BuyOrder) error {
	if err := s.conn(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create buy order: %w", err)
	}
	return nil
}

func (s *GormStore) GetBuyOrder(ctx context.Context, id string) (*models.BuyOrder, error) {
	var o models.BuyOrder
	if err := s.conn(ctx).Where("buy_order_id = ?", id).First(&o).Error; err != nil {
		return nil, notFound(err, "buy order")
	}
	return &o, nil
}

func (s *GormStore) ListOpenBuyOrders(ctx context.Context, gameItemID string, now time.Time) ([]models.BuyOrder, error) {
	var orders []models.BuyOrder
	err := s.conn(ctx).
		Where("game_item_id = ? AND fulfilled_timestamp IS NULL", gameItemID).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load buy orders: %w", err)
	}

	open := orders[:0]
	for _, o := range orders {
		if o.Expiry.After(now) {
			open = append(open, o)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Price.GreaterThan(open[j].Price)
	})
	return open, nil
}

func (s *GormStore) MarkBuyOrderFulfilled(ctx context.Context, id string, at time.Time) (bool, error) {
	res := s.conn(ctx).Model(&models.BuyOrder{}).
		Where("buy_order_id = ? AND fulfilled_timestamp IS NULL AND expiry > ?", id, at).
		Update("fulfilled_timestamp", at)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark buy order %s fulfilled: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ClearBuyOrderFulfilled(ctx context.Context, id string) error {
	err := s.conn(ctx).Model(&models.BuyOrder{}).
		Where("buy_order_id = ?", id).
		Update("fulfilled_timestamp", nil).Error
	if err != nil {
		return fmt.Errorf("failed to clear fulfilment of %s: %w", id, err)
	}
	return nil
}

func (s *GormStore) SetBuyOrderExpiry(ctx context.Context, id string, expiry time.Time) error {
	err := s.conn(ctx).Model(&models.BuyOrder{}).
		Where("buy_order_id = ?", id).
		Update("expiry", expiry).Error
	if err != nil {
		return fmt.Errorf("failed to update expiry of %s: %w", id, err)
	}
	return nil
}

func (s *GormStore) ListPhotos(ctx context.Context, detailsID string) ([]models.ListingPhoto, error) {
	var photos []models.ListingPhoto
	if err := s.conn(ctx).Where("details_id = ?", detailsID).Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	return photos, nil
}

func (s *GormStore) AddPhoto(ctx context.Context, detailsID, resourceID string) error {
	if err := s.conn(ctx).Create(&models.ListingPhoto{DetailsID: detailsID, ResourceID: resourceID}).Error; err != nil {
		return fmt.Errorf("failed to associate photo %s: %w", resourceID, err)
	}
	return nil
}

func (s *GormStore) RemovePhoto(ctx context.Context, detailsID, resourceID string) error {
	err := s.conn(ctx).
		Where("details_id = ? AND resource_id = ?", detailsID, resourceID).
		Delete(&models.ListingPhoto{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove photo %s: %w", resourceID, err)
	}
	return nil
}
