package market

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"marketplace/core/cdn"
	"marketplace/core/database/dbtest"
	"marketplace/core/metrics"
	"marketplace/feature/catalog"
	"marketplace/feature/contractor"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cdnPrefix = "https://cdn.test/listing-photos/"

// fakeResources is an in-memory CDN.
type fakeResources struct {
	mu         sync.Mutex
	links      map[string]string
	sources    map[string]string
	removed    []string
	failCreate map[string]bool
	failVerify map[string]bool
	failRemove bool
}

func newFakeResources() *fakeResources {
	return &fakeResources{
		links:      map[string]string{},
		sources:    map[string]string{},
		failCreate: map[string]bool{},
		failVerify: map[string]bool{},
	}
}

// add registers an existing resource and returns its CDN URL.
func (r *fakeResources) add(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[id] = cdnPrefix + id
	return cdnPrefix + id
}

func (r *fakeResources) CreateExternalResource(_ context.Context, url, tag string) (*cdn.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate[url] {
		return nil, errors.New("fetch failed")
	}
	id := uuid.NewString()
	r.links[id] = cdnPrefix + id
	r.sources[id] = url
	return &cdn.Resource{ResourceID: id, ExternalURL: url, Tag: tag}, nil
}

func (r *fakeResources) RemoveResource(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRemove {
		return errors.New("cdn unavailable")
	}
	delete(r.links, id)
	delete(r.sources, id)
	r.removed = append(r.removed, id)
	return nil
}

func (r *fakeResources) VerifyExternalResource(_ context.Context, url string) error {
	if r.failVerify[url] {
		return errors.New("not an image")
	}
	return nil
}

func (r *fakeResources) GetFileLinkResource(_ context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok {
		return "", cdn.ErrResourceNotFound
	}
	return link, nil
}

func (r *fakeResources) ResourceIDFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, cdnPrefix)
}

// idBySource returns the resource created from an external URL.
func (r *fakeResources) idBySource(url string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, src := range r.sources {
		if src == url {
			return id
		}
	}
	return ""
}

type offerMock struct {
	mock.Mock
}

func (m *offerMock) CreateOffer(ctx context.Context, req OfferRequest) (*OfferResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*OfferResult)
	return res, args.Error(1)
}

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) NotifyBid(ctx context.Context, view *models.UniqueComplete, bid models.Bid) error {
	return m.Called(ctx, view, bid).Error(0)
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	st       *store.GormStore
	res      *fakeResources
	offers   *offerMock
	notifier *notifierMock
	metrics  *metrics.Manager
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tables := append(models.All(), &catalog.Item{}, &contractor.Member{}, &contractor.Grant{})
	db := dbtest.SQLite(t, tables...)

	f := &fixture{
		db:       db,
		st:       store.NewGormStore(db),
		res:      newFakeResources(),
		offers:   &offerMock{},
		notifier: &notifierMock{},
		metrics:  metrics.NewManager("test"),
		now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(Deps{
		Store:       f.st,
		Catalog:     catalog.NewService(db, nil, time.Minute, zap.NewNop()),
		Permissions: contractor.NewChecker(db),
		Resources:   f.res,
		Offers:      f.offers,
		Notifier:    f.notifier,
		Metrics:     f.metrics,
		Logger:      zap.NewNop(),
		Clock:       func() time.Time { return f.now },
	})
	return f
}

func strPtr(s string) *string { return &s }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type listingSpec struct {
	id         string
	saleType   models.SaleType
	price      int64
	quantity   int
	status     models.ListingStatus
	user       string
	contractor string
	internal   bool
	expiration time.Time
	gameItemID string
	photos     []string
}

// seedListing stores a unique or auction listing with its details and photos.
func (f *fixture) seedListing(t *testing.T, spec listingSpec) {
	t.Helper()
	ctx := context.Background()
	if spec.saleType == "" {
		spec.saleType = models.SaleUnique
	}
	if spec.status == "" {
		spec.status = models.StatusActive
	}
	if spec.quantity == 0 {
		spec.quantity = 1
	}
	if spec.expiration.IsZero() {
		spec.expiration = f.now.AddDate(0, 1, 0)
	}
	l := &models.Listing{
		ListingID:         spec.id,
		SaleType:          spec.saleType,
		Price:             dec(spec.price),
		QuantityAvailable: spec.quantity,
		Status:            spec.status,
		Internal:          spec.internal,
		Timestamp:         f.now,
		Expiration:        spec.expiration,
	}
	if spec.contractor != "" {
		l.ContractorSellerID = strPtr(spec.contractor)
	} else {
		l.UserSellerID = strPtr(spec.user)
	}
	d := &models.ListingDetails{DetailsID: "d-" + spec.id, Title: "Title " + spec.id, ItemType: "weapon"}
	if spec.gameItemID != "" {
		d.GameItemID = strPtr(spec.gameItemID)
	}
	require.NoError(t, f.st.CreateListing(ctx, l))
	require.NoError(t, f.st.CreateDetails(ctx, d))
	require.NoError(t, f.st.CreateUnique(ctx, &models.UniqueListing{ListingID: spec.id, DetailsID: d.DetailsID, AcceptOffers: true}))
	for _, p := range spec.photos {
		f.res.add(p)
		require.NoError(t, f.st.AddPhoto(ctx, d.DetailsID, p))
	}
}

// seedAuction stores an auction listing with the given rules and bids.
func (f *fixture) seedAuction(t *testing.T, id, seller string, price, increment int64, end time.Time, bids map[string]int64) {
	t.Helper()
	ctx := context.Background()
	f.seedListing(t, listingSpec{id: id, saleType: models.SaleAuction, price: price, user: seller})
	require.NoError(t, f.st.CreateAuction(ctx, &models.AuctionDetails{
		ListingID:           id,
		MinimumBidIncrement: dec(increment),
		EndTime:             end,
		Status:              models.AuctionActive,
	}))
	for bidder, amount := range bids {
		require.NoError(t, f.st.CreateBid(ctx, &models.Bid{
			BidID:        uuid.NewString()[:26],
			ListingID:    id,
			UserBidderID: bidder,
			Bid:          dec(amount),
			Timestamp:    f.now.Add(-time.Hour),
		}))
	}
}

func (f *fixture) seedCatalogItem(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.db.Create(&catalog.Item{ID: id, Name: name, ItemType: "weapon", DetailsID: "d-item-" + id}).Error)
	require.NoError(t, f.st.CreateDetails(context.Background(), &models.ListingDetails{
		DetailsID: "d-item-" + id, Title: name, ItemType: "weapon",
	}))
}

func (f *fixture) grant(t *testing.T, contractorID, userID string, capabilities ...string) {
	t.Helper()
	require.NoError(t, f.db.Create(&contractor.Member{ContractorID: contractorID, UserID: userID}).Error)
	for _, c := range capabilities {
		require.NoError(t, f.db.Create(&contractor.Grant{ContractorID: contractorID, UserID: userID, Capability: c}).Error)
	}
}

func (f *fixture) listing(t *testing.T, id string) *models.Listing {
	t.Helper()
	l, err := f.st.GetListing(context.Background(), id)
	require.NoError(t, err)
	return l
}

func (f *fixture) photoIDs(t *testing.T, detailsID string) []string {
	t.Helper()
	photos, err := f.st.ListPhotos(context.Background(), detailsID)
	require.NoError(t, err)
	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ResourceID
	}
	return ids
}
