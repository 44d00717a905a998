// Package cdn manages listing photo resources.
//
// External images are fetched over HTTP, checked to be PNG, JPEG, GIF or WebP,
// uploaded to the object store under external/<resource_id><ext> and recorded in
// the image_resources table. Public links are <storage.public_url>/<object>, so a
// link can be mapped back to its resource id with ResourceIDFromURL.
//
// Resolved links are kept in an in-memory LRU cache.
package cdn
