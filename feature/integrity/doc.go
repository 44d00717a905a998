// Package integrity checks that the marketplace's backing state is consistent.
//
// # Checks Provided
//
//   - Storage: the photo bucket exists (fixable by creating it).
//   - Schema: every expected table and column exists in the database.
//   - Photos: market_images rows point at existing image resources, listing
//     resources are attached to some listing, and attached objects are still
//     in the bucket. Dangling associations are fixable.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the bucket check (admins may pass ?fix=true).
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/photos : Runs the photo check (admins may pass ?fix=true).
package integrity
