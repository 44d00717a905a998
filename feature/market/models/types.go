package models

import "fmt"

// SaleType is the shape of a listing. It is a closed set; every dispatch over it
// must handle each value and fail on anything else.
type SaleType string

const (
	SaleUnique    SaleType = "unique"
	SaleAuction   SaleType = "auction"
	SaleMultiple  SaleType = "multiple"
	SaleAggregate SaleType = "aggregate"
)

// Valid reports whether t is a known sale type.
func (t SaleType) Valid() bool {
	switch t {
	case SaleUnique, SaleAuction, SaleMultiple, SaleAggregate:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a stored listing may change from t to next.
// Only grouping moves listings between unique and multiple; auctions and
// aggregate members never change shape.
func (t SaleType) CanTransitionTo(next SaleType) bool {
	switch t {
	case SaleUnique:
		return next == SaleMultiple
	case SaleMultiple:
		return next == SaleUnique
	case SaleAuction, SaleAggregate:
		return false
	default:
		return false
	}
}

// ParseCreateSaleType maps a creation payload's sale_type onto a stored type.
// Creation payloads call unique listings "sale".
func ParseCreateSaleType(s string) (SaleType, error) {
	switch s {
	case "sale", string(SaleUnique):
		return SaleUnique, nil
	case string(SaleAuction):
		return SaleAuction, nil
	default:
		return "", fmt.Errorf("invalid sale_type %q", s)
	}
}

// ListingStatus is the visibility state of a listing.
type ListingStatus string

const (
	StatusActive   ListingStatus = "active"
	StatusInactive ListingStatus = "inactive"
	StatusArchived ListingStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	default:
		return false
	}
}

// AuctionStatus tracks whether an auction still accepts bids.
type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "active"
	AuctionConcluded AuctionStatus = "concluded"
)
