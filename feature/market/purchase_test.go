package market

import (
	"context"
	"testing"
	"time"

	"marketplace/core/apperr"
	"marketplace/feature/market/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPurchase(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, quantity: 5, user: "S"})
	f.seedListing(t, listingSpec{id: "l2", price: 3, quantity: 1, user: "S"})

	f.offers.On("CreateOffer", mock.Anything, mock.MatchedBy(func(req OfferRequest) bool {
		return req.CustomerID == "B" &&
			req.Seller.UserID == "S" &&
			req.Cost.Equal(dec(23)) &&
			len(req.Items) == 2 &&
			req.Description == "leave at the gate"
	})).Return(&OfferResult{}, nil).Once()

	_, err := f.svc.Purchase(context.Background(), Actor{UserID: "B"}, PurchaseInput{
		Items: []PurchaseItem{{ListingID: "l1", Quantity: 2}, {ListingID: "l2", Quantity: 1}},
		Note:  "leave at the gate",
	})
	require.NoError(t, err)
	f.offers.AssertExpectations(t)

	assert.Equal(t, 5, f.listing(t, "l1").QuantityAvailable)
}

func TestPurchase_Rejections(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, quantity: 5, user: "S"})
	f.seedListing(t, listingSpec{id: "other", price: 10, user: "T"})
	f.seedListing(t, listingSpec{id: "off", price: 10, user: "S", status: models.StatusInactive})
	f.seedAuction(t, "auc", "S", 10, 1, f.now.Add(time.Hour), nil)
	f.seedListing(t, listingSpec{id: "secret", price: 10, contractor: "c1", internal: true})

	tests := []struct {
		name  string
		buyer string
		items []PurchaseItem
		want  apperr.Kind
	}{
		{"empty cart", "B", nil, apperr.KindValidation},
		{"zero quantity", "B", []PurchaseItem{{"l1", 0}}, apperr.KindValidation},
		{"duplicate listing", "B", []PurchaseItem{{"l1", 1}, {"l1", 1}}, apperr.KindValidation},
		{"too many", "B", []PurchaseItem{{"l1", 6}}, apperr.KindValidation},
		{"mixed sellers", "B", []PurchaseItem{{"l1", 1}, {"other", 1}}, apperr.KindValidation},
		{"inactive", "B", []PurchaseItem{{"off", 1}}, apperr.KindInvalidState},
		{"auction", "B", []PurchaseItem{{"auc", 1}}, apperr.KindInvalidState},
		{"own listing", "S", []PurchaseItem{{"l1", 1}}, apperr.KindPermissionDenied},
		{"internal listing", "B", []PurchaseItem{{"secret", 1}}, apperr.KindNotFound},
		{"missing", "B", []PurchaseItem{{"ghost", 1}}, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Purchase(context.Background(), Actor{UserID: tt.buyer}, PurchaseInput{Items: tt.items})
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
	f.offers.AssertNotCalled(t, "CreateOffer", mock.Anything, mock.Anything)
}
