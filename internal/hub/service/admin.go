package service

import (
	"context"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

type AdminService struct {
	Store store.Store
}

// ListUsers returns all active users.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListActiveUsers(ctx)
}

// UpdatePermissions changes a user's role and/or note-creation capability.
func (s *AdminService) UpdatePermissions(ctx context.Context, userID string, role *string, canCreateNotes *bool) (domain.User, error) {
	if role == nil && canCreateNotes == nil {
		return domain.User{}, ErrEmptyUpdate
	}
	if role != nil && !domain.ValidRole(*role) {
		return domain.User{}, invalidf("Invalid role %q", *role)
	}

	if err := s.Store.Users().UpdatePermissions(ctx, userID, role, canCreateNotes); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}
