// Package server holds the HTTP server configuration and constants.
//
// The start command builds the Fiber app from this configuration: listen port, the
// gateway API key, request limits and the deployment environment.
package server
