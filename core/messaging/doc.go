// Package messaging wraps NATS for outbound events and request/reply calls.
//
// Bid notifications are published fire-and-forget; the offer handoff uses
// request/reply so the caller gets the created offer and session back.
// Payloads are JSON.
package messaging
