package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/core/database/dbtest"
	"marketplace/feature/market/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *GormStore {
	return NewGormStore(dbtest.SQLite(t, models.All()...))
}

func strPtr(s string) *string { return &s }

func seedUnique(t *testing.T, s *GormStore, id string, price int64, gameItemID *string, status models.ListingStatus) {
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, s.CreateListing(ctx, &models.Listing{
		ListingID:         id,
		SaleType:          models.SaleUnique,
		Price:             decimal.NewFromInt(price),
		QuantityAvailable: 1,
		Status:            status,
		UserSellerID:      strPtr("seller"),
		Timestamp:         now,
		Expiration:        now.AddDate(0, 1, 0),
	}))
	require.NoError(t, s.CreateDetails(ctx, &models.ListingDetails{DetailsID: "d-" + id, Title: id, ItemType: "weapon", GameItemID: gameItemID}))
	require.NoError(t, s.CreateUnique(ctx, &models.UniqueListing{ListingID: id, DetailsID: "d-" + id, AcceptOffers: true}))
}

func TestGormStore_ListingRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedUnique(t, s, "l1", 100, nil, models.StatusActive)

	l, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, l.Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "seller", l.Seller().UserID)

	require.NoError(t, s.UpdateListing(ctx, "l1", map[string]any{"quantity_available": 7, "price": decimal.NewFromInt(120)}))
	l, err = s.LockListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 7, l.QuantityAvailable)
	assert.True(t, l.Price.Equal(decimal.NewFromInt(120)))

	_, err = s.GetListing(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteUnique(ctx, "l1"))
	_, err = s.GetUnique(ctx, "l1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_TransactionRollback(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedUnique(t, s, "l1", 10, nil, models.StatusActive)

	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.UpdateListing(ctx, "l1", map[string]any{"sale_type": models.SaleMultiple}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	l, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, models.SaleUnique, l.SaleType)
}

func TestGormStore_ListCatalogListings(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	item := strPtr("item-1")

	seedUnique(t, s, "cheap", 5, item, models.StatusActive)
	seedUnique(t, s, "pricey", 50, item, models.StatusActive)
	seedUnique(t, s, "archived", 1, item, models.StatusArchived)
	seedUnique(t, s, "other", 1, strPtr("item-2"), models.StatusActive)

	rows, err := s.ListCatalogListings(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "cheap", rows[0].Listing.ListingID)
	assert.Equal(t, "d-cheap", rows[0].Details.DetailsID)
	assert.Equal(t, "pricey", rows[1].Listing.ListingID)

	rows, err = s.ListCatalogListings(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGormStore_Memberships(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateMultiple(ctx, &models.MultipleListing{MultipleID: "m1", DetailsID: "dm1", DefaultListingID: "a"}))
	require.NoError(t, s.CreateMultiple(ctx, &models.MultipleListing{MultipleID: "m2", DetailsID: "dm2", DefaultListingID: "c"}))
	require.NoError(t, s.CreateMembership(ctx, &models.MultipleListingMembership{MultipleListingID: "a", MultipleID: "m1", DetailsID: "da"}))
	require.NoError(t, s.CreateMembership(ctx, &models.MultipleListingMembership{MultipleListingID: "b", MultipleID: "m1", DetailsID: "db"}))

	members, err := s.ListMembers(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, s.MoveMembership(ctx, "b", "m2"))
	m, err := s.GetMembership(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "m2", m.MultipleID)

	def, err := s.FindMultipleByDefault(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "m2", def.MultipleID)

	require.NoError(t, s.DeleteMembership(ctx, "a"))
	_, err = s.GetMembership(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_Bids(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateBid(ctx, &models.Bid{BidID: "b1", ListingID: "l1", UserBidderID: "u1", Bid: decimal.NewFromInt(9), Timestamp: now}))
	require.NoError(t, s.CreateBid(ctx, &models.Bid{BidID: "b2", ListingID: "l1", UserBidderID: "u2", Bid: decimal.NewFromInt(100), Timestamp: now}))

	bids, err := s.ListBids(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, "b2", bids[0].BidID)

	require.NoError(t, s.DeleteBidsByBidder(ctx, "l1", "u2"))
	bids, err = s.ListBids(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, "u1", bids[0].UserBidderID)
}

func TestGormStore_BuyOrderFulfilment(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateBuyOrder(ctx, &models.BuyOrder{BuyOrderID: "o1", GameItemID: "x", BuyerID: "u1", Quantity: 5, Price: decimal.NewFromInt(100), Expiry: now.Add(time.Hour)}))
	require.NoError(t, s.CreateBuyOrder(ctx, &models.BuyOrder{BuyOrderID: "o2", GameItemID: "x", BuyerID: "u1", Quantity: 1, Price: decimal.NewFromInt(1), Expiry: now.Add(-time.Hour)}))

	open, err := s.ListOpenBuyOrders(ctx, "x", now)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "o1", open[0].BuyOrderID)

	won, err := s.MarkBuyOrderFulfilled(ctx, "o1", now)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = s.MarkBuyOrderFulfilled(ctx, "o1", now)
	require.NoError(t, err)
	assert.False(t, won)

	open, err = s.ListOpenBuyOrders(ctx, "x", now)
	require.NoError(t, err)
	assert.Empty(t, open)

	require.NoError(t, s.ClearBuyOrderFulfilled(ctx, "o1"))
	o, err := s.GetBuyOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Nil(t, o.FulfilledTimestamp)

	require.NoError(t, s.SetBuyOrderExpiry(ctx, "o1", now))
	o, err = s.GetBuyOrder(ctx, "o1")
	require.NoError(t, err)
	assert.False(t, o.Open(now.Add(time.Second)))

	// Cancelled after the caller saw it open.
	won, err = s.MarkBuyOrderFulfilled(ctx, "o1", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, won)
	o, err = s.GetBuyOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Nil(t, o.FulfilledTimestamp)
}

func TestGormStore_Photos(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddPhoto(ctx, "d1", "r1"))
	require.NoError(t, s.AddPhoto(ctx, "d1", "r2"))
	require.NoError(t, s.AddPhoto(ctx, "d2", "r3"))
	require.NoError(t, s.RemovePhoto(ctx, "d1", "r1"))

	photos, err := s.ListPhotos(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "r2", photos[0].ResourceID)
}

func TestGormStore_LockListing_MySQL(t *testing.T) {
	db, mock := dbtest.MySQLMock(t)
	s := NewGormStore(db)

	rows := sqlmock.NewRows([]string{"listing_id", "sale_type", "price", "quantity_available", "status"}).
		AddRow("l1", "auction", "10.00", 1, "active")
	mock.ExpectQuery("SELECT \\* FROM `market_listings` WHERE listing_id = \\? .*FOR UPDATE").WillReturnRows(rows)

	l, err := s.LockListing(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, models.SaleAuction, l.SaleType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_MarkBuyOrderFulfilled_MySQL(t *testing.T) {
	db, mock := dbtest.MySQLMock(t)
	s := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `market_buy_orders` SET `fulfilled_timestamp`=\\? WHERE buy_order_id = \\? AND fulfilled_timestamp IS NULL AND expiry > \\?").
		WithArgs(sqlmock.AnyArg(), "o1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	won, err := s.MarkBuyOrderFulfilled(context.Background(), "o1", time.Now())
	require.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}
