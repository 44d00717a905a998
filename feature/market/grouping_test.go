package market

import (
	"context"
	"testing"
	"time"

	"marketplace/core/apperr"
	"marketplace/feature/contractor"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupInput(def string, listings ...string) CreateMultipleInput {
	return CreateMultipleInput{
		Listings:         listings,
		DefaultListingID: def,
		Title:            "Bundle",
		Description:      "Several rifles",
		ItemType:         "weapon",
	}
}

func TestCreateMultiple_ConvertsChildren(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "A", price: 10, user: "S"})
	f.seedListing(t, listingSpec{id: "B", price: 20, user: "S"})
	ctx := context.Background()

	view, err := f.svc.CreateMultiple(ctx, Actor{UserID: "S"}, groupInput("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, "A", view.Multiple.DefaultListingID)
	assert.Equal(t, "Bundle", view.Details.Title)
	assert.Len(t, view.Members, 2)

	for _, id := range []string{"A", "B"} {
		assert.Equal(t, models.SaleMultiple, f.listing(t, id).SaleType)
		_, err := f.st.GetUnique(ctx, id)
		assert.ErrorIs(t, err, store.ErrNotFound)
		m, err := f.st.GetMembership(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, view.Multiple.MultipleID, m.MultipleID)
		assert.Equal(t, "d-"+id, m.DetailsID)
	}

	resolved, err := f.svc.GetComplete(ctx, Actor{}, "A")
	require.NoError(t, err)
	mc, ok := resolved.(*models.MultipleComplete)
	require.True(t, ok)
	assert.Equal(t, view.Multiple.MultipleID, mc.Multiple.MultipleID)
	assert.Len(t, mc.Members, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.GroupConversions.WithLabelValues(toMultiple)))
}

func TestCreateMultiple_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture)
		in    CreateMultipleInput
		actor Actor
		want  apperr.Kind
	}{
		{
			name:  "child of another seller",
			setup: func(t *testing.T, f *fixture) { f.seedListing(t, listingSpec{id: "B", price: 1, user: "other"}) },
			in:    groupInput("A", "B"),
			actor: Actor{UserID: "S"},
			want:  apperr.KindPermissionDenied,
		},
		{
			name: "archived child",
			setup: func(t *testing.T, f *fixture) {
				f.seedListing(t, listingSpec{id: "B", price: 1, user: "S", status: models.StatusArchived})
			},
			in:    groupInput("A", "B"),
			actor: Actor{UserID: "S"},
			want:  apperr.KindInvalidState,
		},
		{
			name: "auction child",
			setup: func(t *testing.T, f *fixture) {
				f.seedAuction(t, "B", "S", 10, 1, f.now.Add(time.Hour), nil)
			},
			in:    groupInput("A", "B"),
			actor: Actor{UserID: "S"},
			want:  apperr.KindValidation,
		},
		{
			name:  "missing child",
			setup: func(t *testing.T, f *fixture) {},
			in:    groupInput("A", "ghost"),
			actor: Actor{UserID: "S"},
			want:  apperr.KindNotFound,
		},
		{
			name:  "contractor without manage_market",
			setup: func(t *testing.T, f *fixture) {},
			in: func() CreateMultipleInput {
				in := groupInput("A")
				in.ContractorID = "c1"
				return in
			}(),
			actor: Actor{UserID: "S"},
			want:  apperr.KindPermissionDenied,
		},
		{
			name:  "missing title",
			setup: func(t *testing.T, f *fixture) {},
			in:    CreateMultipleInput{DefaultListingID: "A", ItemType: "weapon"},
			actor: Actor{UserID: "S"},
			want:  apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedListing(t, listingSpec{id: "A", price: 10, user: "S"})
			tt.setup(t, f)

			_, err := f.svc.CreateMultiple(context.Background(), tt.actor, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))

			// Nothing was converted.
			assert.Equal(t, models.SaleUnique, f.listing(t, "A").SaleType)
			_, err = f.st.GetUnique(context.Background(), "A")
			assert.NoError(t, err)
		})
	}
}

func TestCreateMultiple_ContractorSeller(t *testing.T) {
	f := newFixture(t)
	f.grant(t, "c1", "staff", contractor.ManageMarket)
	f.seedListing(t, listingSpec{id: "A", price: 10, contractor: "c1"})

	in := groupInput("A")
	in.ContractorID = "c1"
	view, err := f.svc.CreateMultiple(context.Background(), Actor{UserID: "staff"}, in)
	require.NoError(t, err)
	require.NotNil(t, view.Multiple.ContractorSellerID)
	assert.Equal(t, "c1", *view.Multiple.ContractorSellerID)
	assert.Nil(t, view.Multiple.UserSellerID)
}

func TestUpdateMultiple_RemovedMembersBecomeUnique(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "A", price: 10, user: "S"})
	f.seedListing(t, listingSpec{id: "B", price: 20, user: "S"})
	ctx := context.Background()

	group, err := f.svc.CreateMultiple(ctx, Actor{UserID: "S"}, groupInput("A", "B"))
	require.NoError(t, err)

	view, err := f.svc.UpdateMultiple(ctx, Actor{UserID: "S"}, group.Multiple.MultipleID, UpdateMultipleInput{Listings: []string{}})
	require.NoError(t, err)
	require.Len(t, view.Members, 1)
	assert.Equal(t, "A", view.Members[0].Listing.ListingID)

	assert.Equal(t, models.SaleUnique, f.listing(t, "B").SaleType)
	u, err := f.st.GetUnique(ctx, "B")
	require.NoError(t, err)
	assert.True(t, u.AcceptOffers)
	assert.Equal(t, "d-B", u.DetailsID)
	_, err = f.st.GetMembership(ctx, "B")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GroupConversions.WithLabelValues(toUnique)))
}

func TestUpdateMultiple_AddsAndMovesMembers(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		f.seedListing(t, listingSpec{id: id, price: 10, user: "S"})
	}
	ctx := context.Background()
	actor := Actor{UserID: "S"}

	g1, err := f.svc.CreateMultiple(ctx, actor, groupInput("A"))
	require.NoError(t, err)
	g2, err := f.svc.CreateMultiple(ctx, actor, groupInput("C", "D"))
	require.NoError(t, err)

	title := "Renamed"
	newDefault := "B"
	view, err := f.svc.UpdateMultiple(ctx, actor, g1.Multiple.MultipleID, UpdateMultipleInput{
		Listings:         []string{"A", "D", "E"},
		DefaultListingID: &newDefault,
		Title:            &title,
	})
	require.NoError(t, err)
	assert.Len(t, view.Members, 4)
	assert.Equal(t, "B", view.Multiple.DefaultListingID)
	assert.Equal(t, "Renamed", view.Details.Title)

	m, err := f.st.GetMembership(ctx, "D")
	require.NoError(t, err)
	assert.Equal(t, g1.Multiple.MultipleID, m.MultipleID)

	g2view, err := f.svc.GetMultiple(ctx, actor, g2.Multiple.MultipleID)
	require.NoError(t, err)
	assert.Len(t, g2view.Members, 1)

	// C is the default of g2 and cannot be relocated.
	_, err = f.svc.UpdateMultiple(ctx, actor, g1.Multiple.MultipleID, UpdateMultipleInput{Listings: []string{"A", "B", "C"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateMultiple_Rejections(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "A", price: 10, user: "S"})
	f.seedListing(t, listingSpec{id: "X", price: 10, user: "other"})
	f.seedListing(t, listingSpec{id: "Z", price: 10, user: "S", status: models.StatusArchived})
	f.seedAuction(t, "Q", "S", 10, 1, f.now.Add(time.Hour), nil)
	ctx := context.Background()

	g, err := f.svc.CreateMultiple(ctx, Actor{UserID: "S"}, groupInput("A"))
	require.NoError(t, err)
	id := g.Multiple.MultipleID

	_, err = f.svc.UpdateMultiple(ctx, Actor{UserID: "S"}, id, UpdateMultipleInput{Listings: []string{"X"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.UpdateMultiple(ctx, Actor{UserID: "S"}, id, UpdateMultipleInput{Listings: []string{"Q"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.UpdateMultiple(ctx, Actor{UserID: "S"}, id, UpdateMultipleInput{Listings: []string{"Z"}})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	_, err = f.svc.UpdateMultiple(ctx, Actor{UserID: "intruder"}, id, UpdateMultipleInput{})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	_, err = f.svc.UpdateMultiple(ctx, Actor{UserID: "S"}, "missing", UpdateMultipleInput{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.Equal(t, models.SaleUnique, f.listing(t, "X").SaleType)
}

func TestWithDefault(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, withDefault([]string{"b"}, "a"))
	assert.Equal(t, []string{"a", "b"}, withDefault([]string{"a", "b", "a"}, "a"))
	assert.Equal(t, []string{"a"}, withDefault(nil, "a"))
}
