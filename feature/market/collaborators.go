package market

import (
	"context"
	"encoding/json"

	"marketplace/core/cdn"
	"marketplace/feature/catalog"
	"marketplace/feature/market/models"

	"github.com/shopspring/decimal"
)

// Actor is the user a request runs for.
type Actor struct {
	UserID string
	Admin  bool
}

// Catalog resolves game items.
type Catalog interface {
	GetCatalogItem(ctx context.Context, id string) (*catalog.Item, error)
	GetCatalogItemByName(ctx context.Context, name string) (*catalog.Item, error)
}

// Permissions answers contractor membership and capability checks.
type Permissions interface {
	HasPermission(ctx context.Context, contractorID, userID, capability string) (bool, error)
	IsMember(ctx context.Context, contractorID, userID string) (bool, error)
}

// ResourceStore manages photo resources on the CDN.
type ResourceStore interface {
	CreateExternalResource(ctx context.Context, url, tag string) (*cdn.Resource, error)
	RemoveResource(ctx context.Context, resourceID string) error
	VerifyExternalResource(ctx context.Context, url string) error
	GetFileLinkResource(ctx context.Context, resourceID string) (string, error)
	ResourceIDFromURL(url string) (id string, own bool)
}

// OfferItem is one listing and quantity inside an offer.
type OfferItem struct {
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

// OfferRequest hands a priced deal to the order workflow.
type OfferRequest struct {
	CustomerID  string          `json:"customer_id"`
	Seller      models.Seller   `json:"seller"`
	Cost        decimal.Decimal `json:"cost"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Items       []OfferItem     `json:"market_listings,omitempty"`
	BuyOrderID  string          `json:"buy_order_id,omitempty"`
}

// OfferResult is returned by the order workflow and passed through unchanged.
type OfferResult struct {
	Offer         json.RawMessage `json:"offer"`
	Session       json.RawMessage `json:"session"`
	DiscordInvite *string         `json:"discord_invite"`
}

// OfferCreator creates offers in the order workflow.
type OfferCreator interface {
	CreateOffer(ctx context.Context, req OfferRequest) (*OfferResult, error)
}

// Notifier receives bid events. Delivery failures never fail a bid.
type Notifier interface {
	NotifyBid(ctx context.Context, view *models.UniqueComplete, bid models.Bid) error
}
