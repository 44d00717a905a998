// Package store persists market listings, groups, auctions, bids, buy orders and
// photo associations.
//
// Store is the interface services depend on; GormStore implements it on gorm for
// MySQL in production and SQLite in tests. Multi-row mutations go through
// Transaction, and LockListing takes a SELECT ... FOR UPDATE row lock where the
// dialect supports it.
package store
