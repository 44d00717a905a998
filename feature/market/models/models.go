package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is the sellable unit. Exactly one of the seller columns is set for an
// owned listing; aggregate members have neither.
type Listing struct {
	ListingID          string          `gorm:"column:listing_id;primaryKey;size:36" json:"listing_id"`
	SaleType           SaleType        `gorm:"column:sale_type;size:16;not null;index" json:"sale_type"`
	Price              decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	QuantityAvailable  int             `gorm:"column:quantity_available;not null" json:"quantity_available"`
	Status             ListingStatus   `gorm:"column:status;size:16;not null;index" json:"status"`
	UserSellerID       *string         `gorm:"column:user_seller_id;size:36;index" json:"user_seller_id"`
	ContractorSellerID *string         `gorm:"column:contractor_seller_id;size:36;index" json:"contractor_seller_id"`
	Internal           bool            `gorm:"column:internal;not null;default:false" json:"internal"`
	Timestamp          time.Time       `gorm:"column:timestamp;not null" json:"timestamp"`
	Expiration         time.Time       `gorm:"column:expiration;not null" json:"expiration"`
}

func (Listing) TableName() string { return "market_listings" }

// Seller returns the owner of the listing.
func (l *Listing) Seller() Seller {
	var s Seller
	if l.UserSellerID != nil {
		s.UserID = *l.UserSellerID
	}
	if l.ContractorSellerID != nil {
		s.ContractorID = *l.ContractorSellerID
	}
	return s
}

// ListingDetails is the descriptive record shared by a unique listing, a group
// or a catalog item.
type ListingDetails struct {
	DetailsID   string  `gorm:"column:details_id;primaryKey;size:36" json:"details_id"`
	Title       string  `gorm:"column:title;size:100;not null" json:"title"`
	Description string  `gorm:"column:description;type:text" json:"description"`
	ItemType    string  `gorm:"column:item_type;size:50;not null" json:"item_type"`
	GameItemID  *string `gorm:"column:game_item_id;size:36;index" json:"game_item_id"`
}

func (ListingDetails) TableName() string { return "market_listing_details" }

// UniqueListing marks a listing as standalone sellable.
type UniqueListing struct {
	ListingID    string `gorm:"column:listing_id;primaryKey;size:36" json:"listing_id"`
	DetailsID    string `gorm:"column:details_id;size:36;not null;index" json:"details_id"`
	AcceptOffers bool   `gorm:"column:accept_offers;not null" json:"accept_offers"`
}

func (UniqueListing) TableName() string { return "market_unique_listings" }

// AggregateListing links a seller-less listing to a catalog item.
type AggregateListing struct {
	ListingID  string `gorm:"column:listing_id;primaryKey;size:36" json:"listing_id"`
	GameItemID string `gorm:"column:game_item_id;size:36;not null;index" json:"game_item_id"`
}

func (AggregateListing) TableName() string { return "market_aggregate_listings" }

// MultipleListing is a group of listings sold as one unit.
type MultipleListing struct {
	MultipleID         string  `gorm:"column:multiple_id;primaryKey;size:36" json:"multiple_id"`
	DetailsID          string  `gorm:"column:details_id;size:36;not null" json:"details_id"`
	DefaultListingID   string  `gorm:"column:default_listing_id;size:36;not null;index" json:"default_listing_id"`
	UserSellerID       *string `gorm:"column:user_seller_id;size:36" json:"user_seller_id"`
	ContractorSellerID *string `gorm:"column:contractor_seller_id;size:36" json:"contractor_seller_id"`
}

func (MultipleListing) TableName() string { return "market_multiples" }

// Seller returns the owner of the group.
func (m *MultipleListing) Seller() Seller {
	var s Seller
	if m.UserSellerID != nil {
		s.UserID = *m.UserSellerID
	}
	if m.ContractorSellerID != nil {
		s.ContractorID = *m.ContractorSellerID
	}
	return s
}

// MultipleListingMembership places a child listing in a group. DetailsID is the
// child's own details row, which it keeps when it leaves the group.
type MultipleListingMembership struct {
	MultipleListingID string `gorm:"column:multiple_listing_id;primaryKey;size:36" json:"listing_id"`
	MultipleID        string `gorm:"column:multiple_id;size:36;not null;index" json:"multiple_id"`
	DetailsID         string `gorm:"column:details_id;size:36;not null" json:"details_id"`
}

func (MultipleListingMembership) TableName() string { return "market_multiple_listings" }

// AuctionDetails holds the bidding rules of an auction listing.
type AuctionDetails struct {
	ListingID           string          `gorm:"column:listing_id;primaryKey;size:36" json:"listing_id"`
	MinimumBidIncrement decimal.Decimal `gorm:"column:minimum_bid_increment;type:decimal(20,2);not null" json:"minimum_bid_increment"`
	EndTime             time.Time       `gorm:"column:end_time;not null" json:"end_time"`
	Status              AuctionStatus   `gorm:"column:status;size:16;not null" json:"status"`
}

func (AuctionDetails) TableName() string { return "market_auction_details" }

// Bid is a bidder's single live bid on an auction.
type Bid struct {
	BidID        string          `gorm:"column:bid_id;primaryKey;size:26" json:"bid_id"`
	ListingID    string          `gorm:"column:listing_id;size:36;not null;uniqueIndex:idx_bid_listing_bidder" json:"listing_id"`
	UserBidderID string          `gorm:"column:user_bidder_id;size:36;not null;uniqueIndex:idx_bid_listing_bidder" json:"user_bidder_id"`
	Bid          decimal.Decimal `gorm:"column:bid;type:decimal(20,2);not null" json:"bid"`
	Timestamp    time.Time       `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (Bid) TableName() string { return "market_bids" }

// BuyOrder is a standing offer to buy a catalog item.
type BuyOrder struct {
	BuyOrderID         string          `gorm:"column:buy_order_id;primaryKey;size:26" json:"buy_order_id"`
	GameItemID         string          `gorm:"column:game_item_id;size:36;not null;index" json:"game_item_id"`
	BuyerID            string          `gorm:"column:buyer_id;size:36;not null;index" json:"buyer_id"`
	Quantity           int             `gorm:"column:quantity;not null" json:"quantity"`
	Price              decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	Expiry             time.Time       `gorm:"column:expiry;not null" json:"expiry"`
	FulfilledTimestamp *time.Time      `gorm:"column:fulfilled_timestamp" json:"fulfilled_timestamp"`
}

func (BuyOrder) TableName() string { return "market_buy_orders" }

// Open reports whether the order can still be fulfilled or cancelled at now.
func (o *BuyOrder) Open(now time.Time) bool {
	return o.FulfilledTimestamp == nil && o.Expiry.After(now)
}

// ListingPhoto associates an image resource with a details row.
type ListingPhoto struct {
	DetailsID  string `gorm:"column:details_id;primaryKey;size:36"`
	ResourceID string `gorm:"column:resource_id;primaryKey;size:36"`
}

func (ListingPhoto) TableName() string { return "market_images" }

// Seller identifies a user or a contractor. At most one field is set.
type Seller struct {
	UserID       string `json:"user_id,omitempty"`
	ContractorID string `json:"contractor_id,omitempty"`
}

// IsZero reports whether no seller is set.
func (s Seller) IsZero() bool {
	return s.UserID == "" && s.ContractorID == ""
}

// Columns returns the seller as nullable column values.
func (s Seller) Columns() (user, contractor *string) {
	if s.ContractorID != "" {
		c := s.ContractorID
		return nil, &c
	}
	if s.UserID != "" {
		u := s.UserID
		return &u, nil
	}
	return nil, nil
}

// All returns every persisted market model, in migration order.
func All() []any {
	return []any{
		&Listing{},
		&ListingDetails{},
		&UniqueListing{},
		&AggregateListing{},
		&MultipleListing{},
		&MultipleListingMembership{},
		&AuctionDetails{},
		&Bid{},
		&BuyOrder{},
		&ListingPhoto{},
	}
}

// Schema returns the expected columns per table for schema verification.
func Schema() map[string][]string {
	return map[string][]string{
		"market_listings":           {"listing_id", "sale_type", "price", "quantity_available", "status", "user_seller_id", "contractor_seller_id", "internal", "timestamp", "expiration"},
		"market_listing_details":    {"details_id", "title", "description", "item_type", "game_item_id"},
		"market_unique_listings":    {"listing_id", "details_id", "accept_offers"},
		"market_aggregate_listings": {"listing_id", "game_item_id"},
		"market_multiples":          {"multiple_id", "details_id", "default_listing_id", "user_seller_id", "contractor_seller_id"},
		"market_multiple_listings":  {"multiple_listing_id", "multiple_id", "details_id"},
		"market_auction_details":    {"listing_id", "minimum_bid_increment", "end_time", "status"},
		"market_bids":               {"bid_id", "listing_id", "user_bidder_id", "bid", "timestamp"},
		"market_buy_orders":         {"buy_order_id", "game_item_id", "buyer_id", "quantity", "price", "expiry", "fulfilled_timestamp"},
		"market_images":             {"details_id", "resource_id"},
	}
}
