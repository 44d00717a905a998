package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/core/apperr"
	"marketplace/core/metrics"
	"marketplace/feature/catalog"
	"marketplace/feature/contractor"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"go.uber.org/zap"
)

// Deps are the collaborators of the market service.
type Deps struct {
	Store       store.Store
	Catalog     Catalog
	Permissions Permissions
	Resources   ResourceStore
	Offers      OfferCreator
	Notifier    Notifier
	Metrics     *metrics.Manager
	Logger      *zap.Logger
	Config      Config
	Clock       func() time.Time
}

// Service implements the listing lifecycle and order matching.
type Service struct {
	store     store.Store
	catalog   Catalog
	perms     Permissions
	resources ResourceStore
	offers    OfferCreator
	notifier  Notifier
	metrics   *metrics.Manager
	logger    *zap.Logger
	cfg       Config
	clock     func() time.Time
}

// NewService creates a market service.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return &Service{
		store:     d.Store,
		catalog:   d.Catalog,
		perms:     d.Permissions,
		resources: d.Resources,
		offers:    d.Offers,
		notifier:  d.Notifier,
		metrics:   d.Metrics,
		logger:    d.Logger,
		cfg:       d.Config.withDefaults(),
		clock:     d.Clock,
	}
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

func (s *Service) loadListing(ctx context.Context, st store.Store, id string) (*models.Listing, error) {
	l, err := st.GetListing(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Listing %s not found", id)
	}
	return l, err
}

func (s *Service) lockListing(ctx context.Context, st store.Store, id string) (*models.Listing, error) {
	l, err := st.LockListing(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Listing %s not found", id)
	}
	return l, err
}

func (s *Service) catalogItem(ctx context.Context, id string) (*catalog.Item, error) {
	item, err := s.catalog.GetCatalogItem(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, apperr.NotFound("Catalog item not found")
	}
	return item, err
}

func (s *Service) catalogItemByName(ctx context.Context, name string) (*catalog.Item, error) {
	item, err := s.catalog.GetCatalogItemByName(ctx, name)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, apperr.NotFound("Catalog item %q not found", name)
	}
	return item, err
}

// canManage checks that actor may modify listings of seller: admins, the user
// seller, or contractor members holding manage_market.
func (s *Service) canManage(ctx context.Context, actor Actor, seller models.Seller) error {
	if actor.Admin {
		return nil
	}
	if seller.UserID != "" && seller.UserID == actor.UserID {
		return nil
	}
	if seller.ContractorID != "" && actor.UserID != "" {
		ok, err := s.perms.HasPermission(ctx, seller.ContractorID, actor.UserID, contractor.ManageMarket)
		if err != nil {
			return fmt.Errorf("permission check failed: %w", err)
		}
		if ok {
			return nil
		}
	}
	return apperr.PermissionDenied("You are not authorized to modify this listing")
}

// canView hides internal listings from everyone outside the owning contractor.
func (s *Service) canView(ctx context.Context, actor Actor, l *models.Listing) error {
	if !l.Internal || actor.Admin {
		return nil
	}
	seller := l.Seller()
	if seller.UserID != "" && seller.UserID == actor.UserID {
		return nil
	}
	if seller.ContractorID != "" {
		ok, err := s.perms.IsMember(ctx, seller.ContractorID, actor.UserID)
		if err != nil {
			return fmt.Errorf("membership check failed: %w", err)
		}
		if ok {
			return nil
		}
	}
	return apperr.NotFound("Listing %s not found", l.ListingID)
}

// sellerFor returns the seller a new listing or group is created for.
func sellerFor(actor Actor, contractorID string) models.Seller {
	if contractorID != "" {
		return models.Seller{ContractorID: contractorID}
	}
	return models.Seller{UserID: actor.UserID}
}

func (s *Service) countRejectedBid(err error) {
	if s.metrics != nil {
		s.metrics.BidsRejected.WithLabelValues(apperr.KindOf(err).String()).Inc()
	}
}

func (s *Service) countPlacedBid() {
	if s.metrics != nil {
		s.metrics.BidsPlaced.Inc()
	}
}

func (s *Service) countConversions(direction string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.GroupConversions.WithLabelValues(direction).Add(float64(n))
	}
}

func (s *Service) countPhotoActions(action string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.PhotoActions.WithLabelValues(action).Add(float64(n))
	}
}
