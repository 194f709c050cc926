package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "orbo/internal/errors"
	"orbo/internal/models"
)

// organizationService handles organization access checks.
type organizationService struct {
	db *gorm.DB
}

// NewOrganizationService creates a new OrganizationServicer.
func NewOrganizationService(db *gorm.DB) OrganizationServicer {
	return &organizationService{db: db}
}

// RequireMembership returns the caller's membership in the organization,
// or ErrForbidden if there is none.
func (s *organizationService) RequireMembership(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	if orgID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Missing orgId")
	}
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var membership models.Membership
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &membership, nil
}
