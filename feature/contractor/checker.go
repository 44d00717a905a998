package contractor

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Checker answers membership and capability questions from the database.
type Checker struct {
	db *gorm.DB
}

// NewChecker creates a permission checker.
func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// IsMember reports whether userID belongs to contractorID.
func (c *Checker) IsMember(ctx context.Context, contractorID, userID string) (bool, error) {
	if contractorID == "" || userID == "" {
		return false, nil
	}
	var count int64
	err := c.db.WithContext(ctx).Model(&Member{}).
		Where("contractor_id = ? AND user_id = ?", contractorID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// HasPermission reports whether userID is a member of contractorID holding capability.
func (c *Checker) HasPermission(ctx context.Context, contractorID, userID, capability string) (bool, error) {
	member, err := c.IsMember(ctx, contractorID, userID)
	if err != nil || !member {
		return false, err
	}
	var count int64
	err = c.db.WithContext(ctx).Model(&Grant{}).
		Where("contractor_id = ? AND user_id = ? AND capability = ?", contractorID, userID, capability).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check capability: %w", err)
	}
	return count > 0, nil
}
