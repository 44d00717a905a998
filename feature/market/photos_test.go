package market

import (
	"context"
	"testing"

	"marketplace/core/apperr"
	"marketplace/core/reconcile"
	"marketplace/feature/market/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateListing_ReconcilesPhotos(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, user: "S", photos: []string{"A", "B"}})
	ctx := context.Background()

	desired := []string{cdnPrefix + "A", "https://img.example/C.png"}
	view, err := f.svc.UpdateListing(ctx, Actor{UserID: "S"}, "l1", ListingPatch{Photos: desired})
	require.NoError(t, err)

	c := f.res.idBySource("https://img.example/C.png")
	require.NotEmpty(t, c)
	assert.ElementsMatch(t, []string{"A", c}, f.photoIDs(t, "d-l1"))
	assert.Equal(t, []string{"B"}, f.res.removed)
	assert.ElementsMatch(t, []string{cdnPrefix + "A", cdnPrefix + c}, view.(*models.UniqueComplete).Photos)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PhotoActions.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PhotoActions.WithLabelValues("delete")))
}

func TestPhotos_ForeignCDNURIRejectsWholeUpdate(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, user: "S", photos: []string{"A"}})
	f.seedListing(t, listingSpec{id: "l2", price: 10, user: "S", photos: []string{"X"}})

	title := "changed"
	_, err := f.svc.UpdateListing(context.Background(), Actor{UserID: "S"}, "l1", ListingPatch{
		Title:  &title,
		Photos: []string{cdnPrefix + "X", "https://img.example/new.png"},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Equal(t, []string{"A"}, f.photoIDs(t, "d-l1"))
	assert.Empty(t, f.res.sources)
	d, err := f.st.GetDetails(context.Background(), "d-l1")
	require.NoError(t, err)
	assert.Equal(t, "Title l1", d.Title)
}

func TestPhotos_UnresolvableCDNURIIsRejected(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, user: "S", photos: []string{"A"}})

	_, err := f.svc.UpdateListing(context.Background(), Actor{UserID: "S"}, "l1", ListingPatch{
		Photos: []string{cdnPrefix},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Equal(t, []string{"A"}, f.photoIDs(t, "d-l1"))
	assert.Empty(t, f.res.sources)
}

func TestPhotos_CreateFailureUndoesCreatedResources(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, user: "S", photos: []string{"A"}})
	f.res.failCreate["https://img.example/2.png"] = true

	_, err := f.svc.UpdateListing(context.Background(), Actor{UserID: "S"}, "l1", ListingPatch{
		Photos: []string{"https://img.example/1.png", "https://img.example/2.png"},
	})
	require.Error(t, err)

	assert.Equal(t, []string{"A"}, f.photoIDs(t, "d-l1"))
	assert.Empty(t, f.res.sources)
	require.Len(t, f.res.removed, 1)
	assert.NotEqual(t, "A", f.res.removed[0])
	_, err = f.res.GetFileLinkResource(context.Background(), "A")
	assert.NoError(t, err)
}

func TestPhotos_RemoveFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, user: "S", photos: []string{"A", "B"}})
	f.res.failRemove = true

	_, err := f.svc.UpdateListing(context.Background(), Actor{UserID: "S"}, "l1", ListingPatch{
		Photos: []string{cdnPrefix + "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, f.photoIDs(t, "d-l1"))
}

func TestPhotos_TooMany(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, user: "S"})

	photos := make([]string, 11)
	for i := range photos {
		photos[i] = "https://img.example/p.png"
	}
	_, err := f.svc.UpdateListing(context.Background(), Actor{UserID: "S"}, "l1", ListingPatch{Photos: photos})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestReconcileListingPhotos_DryRun(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "l1", price: 10, user: "S", photos: []string{"A", "B"}})
	ctx := context.Background()
	admin := Actor{UserID: "ops", Admin: true}
	desired := []string{cdnPrefix + "A", "https://img.example/C.png", "https://img.example/C.png"}

	plan, err := f.svc.ReconcileListingPhotos(ctx, admin, "l1", desired, reconcile.Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, reconcile.PlanSummary{Total: 3, Preserve: 1, Create: 1, Delete: 1}, plan.Summary)
	assert.ElementsMatch(t, []string{"A", "B"}, f.photoIDs(t, "d-l1"))

	_, err = f.svc.ReconcileListingPhotos(ctx, admin, "l1", desired, reconcile.Execute())
	require.NoError(t, err)
	assert.Len(t, f.photoIDs(t, "d-l1"), 2)
	assert.Equal(t, []string{"B"}, f.res.removed)
}

func TestReconcileListingPhotos_MultipleMember(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, listingSpec{id: "A", price: 10, user: "S", photos: []string{"pa"}})
	ctx := context.Background()
	_, err := f.svc.CreateMultiple(ctx, Actor{UserID: "S"}, groupInput("A"))
	require.NoError(t, err)

	_, err = f.svc.ReconcileListingPhotos(ctx, Actor{UserID: "S"}, "A", []string{}, reconcile.Execute())
	require.NoError(t, err)
	assert.Empty(t, f.photoIDs(t, "d-A"))
}
