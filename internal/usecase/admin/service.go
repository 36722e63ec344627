package admin

import (
	"context"
	"fmt"
	"log/slog"

	dom "example.com/user-admin/internal/domain/user"
)

// Gateway is the remote user store as seen by the console.
type Gateway interface {
	List(ctx context.Context) ([]dom.User, error)
	Get(ctx context.Context, id int64) (dom.User, error)
	Create(ctx context.Context, in dom.Candidate) (dom.User, error)
	Update(ctx context.Context, u dom.User) (dom.User, error)
	Patch(ctx context.Context, id int64, p dom.Patch) (dom.User, error)
	Delete(ctx context.Context, id int64) (dom.Ack, error)
}

// Service is the action layer in front of the remote user store. It does not
// touch any cached list; callers invalidate after a successful mutation.
type Service struct {
	gw     Gateway
	logger *slog.Logger
}

func NewService(gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gw: gw, logger: logger}
}

// ListUsers fetches every user. A failed fetch is returned as an error, so an
// empty slice always means the store holds no users.
func (s *Service) ListUsers(ctx context.Context) ([]dom.User, error) {
	users, err := s.gw.List(ctx)
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		return nil, err
	}
	if users == nil {
		users = []dom.User{}
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (dom.User, error) {
	u, err := s.gw.Get(ctx, id)
	if err != nil {
		s.logger.Error("get user failed", "id", id, "error", err)
		return dom.User{}, err
	}
	return u, nil
}

// CreateUser checks the role and the other fields, then checks the email
// against the current list, then creates. The check and the creation are separate calls; the store
// rejects a duplicate that slips in between with a conflict.
func (s *Service) CreateUser(ctx context.Context, in dom.Candidate) (dom.User, error) {
	if !in.Role.IsValid() {
		return dom.User{}, dom.ErrInvalidRole
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return dom.User{}, err
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		return dom.User{}, fmt.Errorf("check email: %w", err)
	}
	for _, u := range users {
		if u.Email == in.Email {
			return dom.User{}, dom.ErrDuplicateEmail
		}
	}

	created, err := s.gw.Create(ctx, in)
	if err != nil {
		s.logger.Error("create user failed", "email", in.Email, "error", err)
		return dom.User{}, err
	}
	return created, nil
}

// UpdateUser replaces every field of the stored user with u.
func (s *Service) UpdateUser(ctx context.Context, u dom.User) (dom.User, error) {
	if !u.Role.IsValid() {
		return dom.User{}, dom.ErrInvalidRole
	}
	c := dom.Candidate{Name: u.Name, Email: u.Email, Role: u.Role}.Normalize()
	if err := c.Validate(); err != nil {
		return dom.User{}, err
	}
	u.Name, u.Email = c.Name, c.Email
	updated, err := s.gw.Update(ctx, u)
	if err != nil {
		s.logger.Error("update user failed", "id", u.ID, "error", err)
		return dom.User{}, err
	}
	return updated, nil
}

// PatchUser updates only the fields set in p.
func (s *Service) PatchUser(ctx context.Context, id int64, p dom.Patch) (dom.User, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return dom.User{}, err
	}
	updated, err := s.gw.Patch(ctx, id, p)
	if err != nil {
		s.logger.Error("patch user failed", "id", id, "error", err)
		return dom.User{}, err
	}
	return updated, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) (dom.Ack, error) {
	ack, err := s.gw.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete user failed", "id", id, "error", err)
		return nil, err
	}
	return ack, nil
}
