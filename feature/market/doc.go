// Package market implements the listing lifecycle of the marketplace.
//
// A listing is sold on its own (unique), by auction, as a member of a group
// (multiple) or rolled up under a catalog item (aggregate). Every read resolves
// the listing into its complete view for that sale type.
//
// # Components
//
//   - Service: resolver, bid engine, grouping, buy orders, photo reconciliation
//     and the listing operations (create, update, quantity, refresh, archive,
//     purchase). Writes that touch several rows run in one store transaction.
//   - NATSNotifier / NATSOfferCreator: publish bid events and hand priced deals
//     to the order workflow over NATS request/reply.
//   - Handler: Exposes the HTTP endpoints below. Mutating routes need an acting user.
//   - Loader: Registers the feature with the application.
//
// # Visibility
//
// Internal listings are only visible to their seller, members of the seller
// contractor and admins. Everyone else gets a not-found error for the listing
// itself, and internal members are left out of group views.
//
// # HTTP Endpoints
//
//   - GET /market/listing/:id : Complete view of a listing.
//   - POST /market/listings : Create a sale or auction listing.
//   - PATCH /market/listing/:id : Update price, quantity, details or photos.
//   - PUT /market/listing/:id/quantity : Set the available quantity.
//   - POST /market/listing/:id/refresh : Extend the expiration inside the refresh window.
//   - POST /market/listing/:id/archive : Archive a listing.
//   - POST /market/listing/:id/bid : Place a bid on an auction.
//   - GET /market/aggregate/:game_item_id : Catalog rollup with open buy orders.
//   - POST /market/multiple : Group unique listings.
//   - GET /market/multiple/:id : Group view.
//   - PATCH /market/multiple/:id : Change members, default listing or details.
//   - POST /market/buyorder : Create a buy order.
//   - POST /market/buyorder/:id/fulfill : Fulfil a buy order with an offer.
//   - POST /market/buyorder/:id/cancel : Cancel an own buy order.
//   - GET /market/buyorders/:game_item_id : Open buy orders of an item.
//   - POST /market/purchase : Turn listings into an offer for the seller.
package market
