package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSaleType_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to SaleType
		want     bool
	}{
		{SaleUnique, SaleMultiple, true},
		{SaleMultiple, SaleUnique, true},
		{SaleUnique, SaleAuction, false},
		{SaleAuction, SaleMultiple, false},
		{SaleAuction, SaleUnique, false},
		{SaleAggregate, SaleUnique, false},
		{SaleMultiple, SaleAggregate, false},
		{SaleType("bogus"), SaleUnique, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSaleType_Valid(t *testing.T) {
	assert.True(t, SaleAggregate.Valid())
	assert.False(t, SaleType("sale").Valid())
}

func TestParseCreateSaleType(t *testing.T) {
	st, err := ParseCreateSaleType("sale")
	assert.NoError(t, err)
	assert.Equal(t, SaleUnique, st)

	st, err = ParseCreateSaleType("auction")
	assert.NoError(t, err)
	assert.Equal(t, SaleAuction, st)

	_, err = ParseCreateSaleType("multiple")
	assert.Error(t, err)
}

func TestSeller(t *testing.T) {
	u, c := Seller{UserID: "u1"}.Columns()
	assert.Equal(t, "u1", *u)
	assert.Nil(t, c)

	u, c = Seller{ContractorID: "c1", UserID: "u1"}.Columns()
	assert.Nil(t, u)
	assert.Equal(t, "c1", *c)

	l := Listing{ContractorSellerID: c}
	assert.Equal(t, Seller{ContractorID: "c1"}, l.Seller())
	assert.True(t, Seller{}.IsZero())
}

func TestBuyOrder_Open(t *testing.T) {
	now := time.Now()
	fulfilled := now.Add(-time.Minute)

	assert.True(t, (&BuyOrder{Expiry: now.Add(time.Hour)}).Open(now))
	assert.False(t, (&BuyOrder{Expiry: now.Add(-time.Hour)}).Open(now))
	assert.False(t, (&BuyOrder{Expiry: now.Add(time.Hour), FulfilledTimestamp: &fulfilled}).Open(now))
}
