package user

import (
	"context"
	"errors"

	dom "example.com/user-admin/internal/domain/user"
)

// Service holds the store-side rules for the users resource.
type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateUser(ctx context.Context, in dom.Candidate) (*dom.User, error) {
	if !in.Role.IsValid() {
		return nil, dom.ErrInvalidRole
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*dom.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, filter dom.ListUsersFilter) ([]*dom.User, error) {
	if filter.Role != nil && !filter.Role.IsValid() {
		return nil, dom.ErrInvalidRole
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) UpdateUser(ctx context.Context, id int64, patch dom.Patch) (*dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Email != nil && *patch.Email != u.Email {
		if err := s.ensureEmailFree(ctx, *patch.Email, u.ID); err != nil {
			return nil, err
		}
	}

	updated := patch.Apply(*u)
	return s.repo.Update(ctx, &updated)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ensureEmailFree fails when another user (not selfID) already owns email.
func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, dom.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return dom.ErrEmailAlreadyUsed
	}
	return nil
}
