package market

import (
	"context"
	"errors"
	"strings"

	"marketplace/core/apperr"
	"marketplace/core/reconcile"
	"marketplace/feature/market/models"
	"marketplace/feature/market/store"

	"github.com/google/uuid"
)

// CreateMultipleInput groups unique listings under one details row.
type CreateMultipleInput struct {
	Listings         []string
	DefaultListingID string
	Title            string
	Description      string
	ItemType         string
	ContractorID     string
}

// UpdateMultipleInput changes a group. A nil Listings keeps the current members.
type UpdateMultipleInput struct {
	Listings         []string
	DefaultListingID *string
	Title            *string
	Description      *string
	ItemType         *string
}

// Conversion directions reported to metrics.
const (
	toMultiple = "to_multiple"
	toUnique   = "to_unique"
)

// withDefault returns ids with def appended when missing, without duplicates.
func withDefault(ids []string, def string) []string {
	seen := make(map[string]bool, len(ids)+1)
	out := make([]string, 0, len(ids)+1)
	for _, id := range append(append([]string{}, ids...), def) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// CreateMultiple converts unique listings into members of a new group.
func (s *Service) CreateMultiple(ctx context.Context, actor Actor, in CreateMultipleInput) (*models.MultipleComplete, error) {
	switch {
	case in.DefaultListingID == "":
		return nil, apperr.Validation("default_listing_id is required")
	case strings.TrimSpace(in.Title) == "":
		return nil, apperr.Validation("title is required")
	case strings.TrimSpace(in.ItemType) == "":
		return nil, apperr.Validation("item_type is required")
	}

	seller := sellerFor(actor, in.ContractorID)
	if err := s.canManage(ctx, actor, seller); err != nil {
		return nil, err
	}

	ids := withDefault(in.Listings, in.DefaultListingID)
	userID, contractorID := seller.Columns()
	multiple := &models.MultipleListing{
		MultipleID:         uuid.NewString(),
		DetailsID:          uuid.NewString(),
		DefaultListingID:   in.DefaultListingID,
		UserSellerID:       userID,
		ContractorSellerID: contractorID,
	}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		children := make([]*models.UniqueListing, 0, len(ids))
		for _, id := range ids {
			l, err := s.lockListing(ctx, tx, id)
			if err != nil {
				return err
			}
			if l.Status == models.StatusArchived {
				return apperr.InvalidState("Listing %s is archived", id)
			}
			if l.SaleType != models.SaleUnique {
				return apperr.Validation("Listing %s is not a unique listing", id)
			}
			if l.Seller() != seller {
				return apperr.PermissionDenied("Listing %s does not belong to this seller", id)
			}
			u, err := tx.GetUnique(ctx, id)
			if err != nil {
				return missingRow(err, "unique", id)
			}
			children = append(children, u)
		}

		if err := tx.CreateDetails(ctx, &models.ListingDetails{
			DetailsID:   multiple.DetailsID,
			Title:       in.Title,
			Description: in.Description,
			ItemType:    in.ItemType,
		}); err != nil {
			return err
		}
		if err := tx.CreateMultiple(ctx, multiple); err != nil {
			return err
		}
		for _, u := range children {
			if err := s.joinGroup(ctx, tx, u, multiple.MultipleID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.countConversions(toMultiple, len(ids))
	return s.multipleComplete(ctx, s.store, actor, multiple.MultipleID)
}

// joinGroup turns a unique listing into a member of multipleID, keeping its details.
func (s *Service) joinGroup(ctx context.Context, tx store.Store, u *models.UniqueListing, multipleID string) error {
	if err := tx.CreateMembership(ctx, &models.MultipleListingMembership{
		MultipleListingID: u.ListingID,
		MultipleID:        multipleID,
		DetailsID:         u.DetailsID,
	}); err != nil {
		return err
	}
	if err := tx.UpdateListing(ctx, u.ListingID, map[string]any{"sale_type": models.SaleMultiple}); err != nil {
		return err
	}
	return tx.DeleteUnique(ctx, u.ListingID)
}

// leaveGroup turns a member back into a unique listing that accepts offers.
func (s *Service) leaveGroup(ctx context.Context, tx store.Store, listingID string) error {
	m, err := tx.GetMembership(ctx, listingID)
	if err != nil {
		return missingRow(err, "membership", listingID)
	}
	if err := tx.DeleteMembership(ctx, listingID); err != nil {
		return err
	}
	if err := tx.UpdateListing(ctx, listingID, map[string]any{"sale_type": models.SaleUnique}); err != nil {
		return err
	}
	return tx.CreateUnique(ctx, &models.UniqueListing{
		ListingID:    listingID,
		DetailsID:    m.DetailsID,
		AcceptOffers: true,
	})
}

// groupAddition is a validated listing about to join a group.
type groupAddition struct {
	unique *models.UniqueListing
	move   string
}

// UpdateMultiple changes the members, default and details of a group.
// Listings leaving the group become unique listings again; listings joining it
// are converted from unique or moved from another group of the same seller.
func (s *Service) UpdateMultiple(ctx context.Context, actor Actor, multipleID string, in UpdateMultipleInput) (*models.MultipleComplete, error) {
	m, err := s.store.GetMultiple(ctx, multipleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Multiple listing %s not found", multipleID)
	}
	if err != nil {
		return nil, err
	}
	seller := m.Seller()
	if err := s.canManage(ctx, actor, seller); err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.Validation("title must not be empty")
	}
	if in.ItemType != nil && strings.TrimSpace(*in.ItemType) == "" {
		return nil, apperr.Validation("item_type must not be empty")
	}

	defaultID := m.DefaultListingID
	if in.DefaultListingID != nil && *in.DefaultListingID != "" {
		defaultID = *in.DefaultListingID
	}

	var removed []string
	joined := 0
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		members, err := tx.ListMembers(ctx, multipleID)
		if err != nil {
			return err
		}
		old := make([]string, len(members))
		for i, mem := range members {
			old[i] = mem.MultipleListingID
		}
		desired := in.Listings
		if desired == nil {
			desired = old
		}
		next := withDefault(desired, defaultID)
		added := reconcile.Added(old, next)
		removed = reconcile.Removed(old, next)

		additions := make([]groupAddition, 0, len(added))
		for _, id := range added {
			a, err := s.validateAddition(ctx, tx, id, multipleID, seller)
			if err != nil {
				return err
			}
			additions = append(additions, a)
		}

		for _, a := range additions {
			if a.unique != nil {
				err = s.joinGroup(ctx, tx, a.unique, multipleID)
				joined++
			} else {
				err = tx.MoveMembership(ctx, a.move, multipleID)
			}
			if err != nil {
				return err
			}
		}
		for _, id := range removed {
			if err := s.leaveGroup(ctx, tx, id); err != nil {
				return err
			}
		}

		details := map[string]any{}
		if in.Title != nil {
			details["title"] = *in.Title
		}
		if in.Description != nil {
			details["description"] = *in.Description
		}
		if in.ItemType != nil {
			details["item_type"] = *in.ItemType
		}
		if err := tx.UpdateDetails(ctx, m.DetailsID, details); err != nil {
			return err
		}
		if defaultID != m.DefaultListingID {
			return tx.UpdateMultiple(ctx, multipleID, map[string]any{"default_listing_id": defaultID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.countConversions(toMultiple, joined)
	s.countConversions(toUnique, len(removed))
	return s.multipleComplete(ctx, s.store, actor, multipleID)
}

func (s *Service) validateAddition(ctx context.Context, tx store.Store, id, multipleID string, seller models.Seller) (groupAddition, error) {
	l, err := s.lockListing(ctx, tx, id)
	if err != nil {
		return groupAddition{}, err
	}
	if l.Status == models.StatusArchived {
		return groupAddition{}, apperr.InvalidState("Listing %s is archived", id)
	}
	if l.Seller() != seller {
		return groupAddition{}, apperr.Validation("Listing %s does not belong to this seller", id)
	}

	switch l.SaleType {
	case models.SaleUnique:
		u, err := tx.GetUnique(ctx, id)
		if err != nil {
			return groupAddition{}, missingRow(err, "unique", id)
		}
		return groupAddition{unique: u}, nil
	case models.SaleMultiple:
		other, err := tx.FindMultipleByDefault(ctx, id)
		switch {
		case err == nil && other.MultipleID != multipleID:
			return groupAddition{}, apperr.Validation("Listing %s is the default of another group", id)
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return groupAddition{}, err
		}
		return groupAddition{move: id}, nil
	case models.SaleAuction, models.SaleAggregate:
		return groupAddition{}, apperr.Validation("Listing %s cannot be added to a group", id)
	default:
		return groupAddition{}, errors.New("unknown sale type " + string(l.SaleType))
	}
}
