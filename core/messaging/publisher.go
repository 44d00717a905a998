package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrDisabled is returned when messaging is not configured.
var ErrDisabled = errors.New("messaging disabled")

// Conn is the subset of *nats.Conn used by this package.
type Conn interface {
	Publish(subject string, data []byte) error
	RequestWithContext(ctx context.Context, subject string, data []byte) (*nats.Msg, error)
}

// Client publishes JSON events and performs JSON request/reply calls.
type Client struct {
	conn    Conn
	timeout time.Duration
}

// NewClient wraps a NATS connection. A nil conn yields a client whose calls fail
// with ErrDisabled.
func NewClient(conn Conn, cfg Config) *Client {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{conn: conn, timeout: timeout}
}

// Publish marshals message to JSON and publishes it on subject.
func (c *Client) Publish(ctx context.Context, subject string, message any) error {
	if c.conn == nil {
		return ErrDisabled
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message for subject %s: %w", subject, err)
	}
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message to NATS subject %s: %w", subject, err)
	}
	return nil
}

// replyEnvelope is the shape responders use to report failures.
type replyEnvelope struct {
	Error string `json:"error,omitempty"`
}

// Request sends request as JSON on subject and decodes the reply into reply.
// A reply carrying a non-empty "error" field is returned as an error.
func (c *Client) Request(ctx context.Context, subject string, request, reply any) error {
	if c.conn == nil {
		return ErrDisabled
	}
	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request for subject %s: %w", subject, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("request on %s failed: %w", subject, err)
	}

	var env replyEnvelope
	if err := json.Unmarshal(msg.Data, &env); err == nil && env.Error != "" {
		return fmt.Errorf("responder on %s: %s", subject, env.Error)
	}
	if err := json.Unmarshal(msg.Data, reply); err != nil {
		return fmt.Errorf("failed to decode reply from %s: %w", subject, err)
	}
	return nil
}
