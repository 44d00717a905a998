// Package models defines the market tables and the resolved listing views.
//
// # Tables
//
//   - Listing (market_listings): price, quantity, status, seller and sale type.
//   - ListingDetails (market_listing_details): title, description and item type,
//     shared by the photos in market_images.
//   - UniqueListing, AggregateListing, MultipleListing and
//     MultipleListingMembership: the shape rows for each sale type.
//   - AuctionDetails, Bid: auction rules and the live bids, one per bidder.
//   - BuyOrder: a standing offer to buy a catalog item. It is open while
//     unfulfilled and before its expiry.
//
// # Views
//
// UniqueComplete, MultipleComplete and AggregateComplete implement
// CompleteListing and are what the HTTP layer returns. Money is
// shopspring/decimal throughout.
package models
