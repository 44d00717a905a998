package models

import "github.com/shopspring/decimal"

// CompleteListing is one of the resolved read models.
type CompleteListing interface {
	Kind() SaleType
}

// UniqueComplete is a standalone listing; for auctions it also carries the
// auction rules, the live bids and the derived current price.
type UniqueComplete struct {
	Listing      Listing          `json:"listing"`
	Details      ListingDetails   `json:"details"`
	Unique       UniqueListing    `json:"unique"`
	Photos       []string         `json:"photos"`
	Auction      *AuctionDetails  `json:"auction_details,omitempty"`
	Bids         []Bid            `json:"bids,omitempty"`
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
}

func (u *UniqueComplete) Kind() SaleType { return u.Listing.SaleType }

// AggregateComplete is the catalog rollup for one game item.
type AggregateComplete struct {
	GameItemID string          `json:"game_item_id"`
	Name       string          `json:"name"`
	Details    ListingDetails  `json:"details"`
	Photos     []string        `json:"photos"`
	Listings   []AggregateItem `json:"listings"`
	BuyOrders  []BuyOrder      `json:"buy_orders"`
}

func (a *AggregateComplete) Kind() SaleType { return SaleAggregate }

// AggregateItem is one unique listing inside an aggregate view.
type AggregateItem struct {
	Listing Listing        `json:"listing"`
	Details ListingDetails `json:"details"`
	Photos  []string       `json:"photos"`
}

// MultipleComplete is a group with all its members resolved.
type MultipleComplete struct {
	Multiple MultipleListing `json:"multiple"`
	Details  ListingDetails  `json:"details"`
	Photos   []string        `json:"photos"`
	Members  []MemberView    `json:"listings"`
}

func (m *MultipleComplete) Kind() SaleType { return SaleMultiple }

// MemberView is a child listing of a group.
type MemberView struct {
	Listing Listing        `json:"listing"`
	Details ListingDetails `json:"details"`
	Photos  []string       `json:"photos"`
}
