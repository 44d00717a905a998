// Package catalog serves the game item catalog that listings and buy orders
// reference.
//
// Lookups by id or name are cached in redis (when enabled) and guarded by a
// singleflight group. Search does fuzzy matching over all item names.
//
// # HTTP Endpoints
//
//   - GET /catalog/search?q=<query>&limit=<n> : Fuzzy name search.
//   - GET /catalog/items/:id : Item by id.
package catalog
