package market

import (
	"context"
	"fmt"

	"marketplace/core/apperr"
	"marketplace/core/reconcile"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"go.uber.org/zap"
)

// PlanPhotos diffs the desired photo URIs of a details row against its current
// resources. CDN URIs must point at a current resource; anything else is treated
// as an external URL and verified.
func (s *Service) PlanPhotos(ctx context.Context, detailsID string, desired []string) (*reconcile.Plan, error) {
	current, err := s.store.ListPhotos(ctx, detailsID)
	if err != nil {
		return nil, err
	}
	return s.planPhotos(ctx, current, desired)
}

func (s *Service) planPhotos(ctx context.Context, current []models.ListingPhoto, desired []string) (*reconcile.Plan, error) {
	if len(desired) > s.cfg.MaxPhotos {
		return nil, apperr.Validation("A listing can have at most %d photos", s.cfg.MaxPhotos)
	}

	owned := make(map[string]bool, len(current))
	for _, p := range current {
		owned[p.ResourceID] = true
	}

	plan := &reconcile.Plan{}
	preserved := make(map[string]bool)
	external := make(map[string]bool)
	for _, uri := range desired {
		if id, own := s.resources.ResourceIDFromURL(uri); own {
			if id == "" || !owned[id] {
				return nil, apperr.Validation("Photo %s does not belong to this listing", uri)
			}
			if !preserved[id] {
				preserved[id] = true
				plan.Add(reconcile.ActionPreserve, id, "still desired")
			}
			continue
		}
		if external[uri] {
			continue
		}
		if err := s.resources.VerifyExternalResource(ctx, uri); err != nil {
			if apperr.Is(err, apperr.KindValidation) {
				return nil, err
			}
			return nil, apperr.Wrap(apperr.KindValidation, err, fmt.Sprintf("Invalid photo URL %s", uri))
		}
		external[uri] = true
		plan.Add(reconcile.ActionCreate, uri, "external photo")
	}

	for _, p := range current {
		if !preserved[p.ResourceID] {
			plan.Add(reconcile.ActionDelete, p.ResourceID, "no longer desired")
		}
	}
	return plan, nil
}

// photoMutator creates CDN resources as the plan is applied. Deletions are only
// recorded; resources are removed from the CDN after the association
// transaction commits.
type photoMutator struct {
	resources ResourceStore
	tag       string
	created   map[string]string
	order     []string
	removed   []string
}

func newPhotoMutator(resources ResourceStore, tag string) *photoMutator {
	return &photoMutator{resources: resources, tag: tag, created: make(map[string]string)}
}

func (m *photoMutator) Create(ctx context.Context, url string) error {
	res, err := m.resources.CreateExternalResource(ctx, url, m.tag)
	if err != nil {
		return err
	}
	m.created[url] = res.ResourceID
	m.order = append(m.order, url)
	return nil
}

func (m *photoMutator) UndoCreate(ctx context.Context, url string) error {
	id, ok := m.created[url]
	if !ok {
		return nil
	}
	delete(m.created, url)
	return m.resources.RemoveResource(ctx, id)
}

func (m *photoMutator) Delete(_ context.Context, resourceID string) error {
	m.removed = append(m.removed, resourceID)
	return nil
}

// applyPhotos executes plan for detailsID. Resource creation happens first; the
// association changes run in one transaction together with extra, if given.
func (s *Service) applyPhotos(ctx context.Context, detailsID string, plan *reconcile.Plan, extra func(tx store.Store) error) error {
	mut := newPhotoMutator(s.resources, s.cfg.PhotoTag)
	if _, err := reconcile.ApplyPlan(ctx, mut, plan, reconcile.Execute()); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if extra != nil {
			if err := extra(tx); err != nil {
				return err
			}
		}
		for _, id := range mut.removed {
			if err := tx.RemovePhoto(ctx, detailsID, id); err != nil {
				return err
			}
		}
		for _, url := range mut.order {
			if err := tx.AddPhoto(ctx, detailsID, mut.created[url]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for i := len(mut.order) - 1; i >= 0; i-- {
			if rerr := mut.UndoCreate(ctx, mut.order[i]); rerr != nil {
				s.logger.Warn("Failed to remove orphaned photo resource", zap.String("url", mut.order[i]), zap.Error(rerr))
			}
		}
		return err
	}

	for _, id := range mut.removed {
		if err := s.resources.RemoveResource(ctx, id); err != nil {
			s.logger.Warn("Failed to remove photo resource",
				zap.String("details_id", detailsID),
				zap.String("resource_id", id),
				zap.Error(err))
		}
	}

	s.countPhotoActions(string(reconcile.ActionCreate), len(mut.order))
	s.countPhotoActions(string(reconcile.ActionDelete), len(mut.removed))
	return nil
}

// ReconcileListingPhotos plans the photo set of a listing and applies it unless
// opts asks for a dry run.
func (s *Service) ReconcileListingPhotos(ctx context.Context, actor Actor, listingID string, desired []string, opts reconcile.Options) (*reconcile.Plan, error) {
	l, err := s.loadListing(ctx, s.store, listingID)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(ctx, actor, l.Seller()); err != nil {
		return nil, err
	}
	if l.Status == models.StatusArchived {
		return nil, apperr.InvalidState("Cannot update archived listing")
	}
	detailsID, err := s.detailsIDFor(ctx, s.store, l)
	if err != nil {
		return nil, err
	}

	plan, err := s.PlanPhotos(ctx, detailsID, desired)
	if err != nil {
		return nil, err
	}
	if opts.DryRun || !opts.Confirmed || plan.Empty() {
		return plan, nil
	}
	if err := s.applyPhotos(ctx, detailsID, plan, nil); err != nil {
		return nil, err
	}
	return plan, nil
}
