// Package loader registers the HTTP features of the marketplace.
//
// A feature is a vertical slice (catalog, market, integrity) that owns a set of
// routes. The start command registers each one with a Manager and LoadAll mounts
// the enabled ones on the fiber app in registration order:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Registering two features with the same name is an error at LoadAll time, as is
// any Load error; the server does not start half-mounted.
package loader
