// Package contractor checks organisation membership and capabilities.
//
// Organisation administration lives elsewhere; the market only reads the
// contractor_members and contractor_capabilities tables.
package contractor
