package market

import (
	"context"
	"encoding/json"
	"testing"

	"marketplace/core/messaging"
	"marketplace/feature/market/models"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	reply   []byte
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.subject, c.data = subject, data
	return nil
}

func (c *fakeConn) RequestWithContext(_ context.Context, subject string, data []byte) (*nats.Msg, error) {
	c.subject, c.data = subject, data
	return &nats.Msg{Subject: subject, Data: c.reply}, nil
}

func TestNATSNotifier(t *testing.T) {
	conn := &fakeConn{}
	n := NewNATSNotifier(messaging.NewClient(conn, messaging.Config{}), "market.bid.placed")

	view := &models.UniqueComplete{Listing: models.Listing{ListingID: "a1"}}
	require.NoError(t, n.NotifyBid(context.Background(), view, models.Bid{BidID: "b1", Bid: dec(15)}))

	assert.Equal(t, "market.bid.placed", conn.subject)
	var ev struct {
		Listing struct {
			Listing struct {
				ListingID string `json:"listing_id"`
			} `json:"listing"`
		} `json:"listing"`
		Bid struct {
			BidID string `json:"bid_id"`
		} `json:"bid"`
	}
	require.NoError(t, json.Unmarshal(conn.data, &ev))
	assert.Equal(t, "a1", ev.Listing.Listing.ListingID)
	assert.Equal(t, "b1", ev.Bid.BidID)
}

func TestNATSOfferCreator(t *testing.T) {
	conn := &fakeConn{reply: []byte(`{"offer":{"id":"o1"},"session":{"id":"s1"},"discord_invite":"https://discord.gg/x"}`)}
	o := NewNATSOfferCreator(messaging.NewClient(conn, messaging.Config{}), "orders.offer.create")

	res, err := o.CreateOffer(context.Background(), OfferRequest{CustomerID: "B", Cost: dec(20)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"o1"}`, string(res.Offer))
	require.NotNil(t, res.DiscordInvite)
	assert.Equal(t, "https://discord.gg/x", *res.DiscordInvite)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(conn.data, &sent))
	assert.Equal(t, "B", sent["customer_id"])
}

func TestNATSOfferCreator_ResponderError(t *testing.T) {
	conn := &fakeConn{reply: []byte(`{"error":"customer banned"}`)}
	o := NewNATSOfferCreator(messaging.NewClient(conn, messaging.Config{}), "orders.offer.create")

	_, err := o.CreateOffer(context.Background(), OfferRequest{})
	assert.ErrorContains(t, err, "customer banned")
}
