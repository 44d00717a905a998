package market

import (
	"context"

	"marketplace/core/messaging"
	"marketplace/feature/market/models"
)

// BidPlacedEvent is published after a bid is accepted.
type BidPlacedEvent struct {
	Listing *models.UniqueComplete `json:"listing"`
	Bid     models.Bid             `json:"bid"`
}

// NATSNotifier publishes bid events on a NATS subject.
type NATSNotifier struct {
	client  *messaging.Client
	subject string
}

// NewNATSNotifier creates a notifier publishing on subject.
func NewNATSNotifier(client *messaging.Client, subject string) *NATSNotifier {
	return &NATSNotifier{client: client, subject: subject}
}

func (n *NATSNotifier) NotifyBid(ctx context.Context, view *models.UniqueComplete, bid models.Bid) error {
	return n.client.Publish(ctx, n.subject, BidPlacedEvent{Listing: view, Bid: bid})
}

// NATSOfferCreator asks the order workflow to create offers over NATS request/reply.
type NATSOfferCreator struct {
	client  *messaging.Client
	subject string
}

// NewNATSOfferCreator creates an offer creator requesting on subject.
func NewNATSOfferCreator(client *messaging.Client, subject string) *NATSOfferCreator {
	return &NATSOfferCreator{client: client, subject: subject}
}

func (o *NATSOfferCreator) CreateOffer(ctx context.Context, req OfferRequest) (*OfferResult, error) {
	var res OfferResult
	if err := o.client.Request(ctx, o.subject, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
