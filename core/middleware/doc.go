// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: Validates the gateway API key and exposes the acting user (X-User-ID,
//     X-User-Admin) to handlers as an auth.Actor.
//   - RayID: Generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
//
// These middleware components are registered globally in the start command.
package middleware
