package user

import "context"

// Repository is the storage port of the user store service.
type Repository interface {
	Create(ctx context.Context, c Candidate) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, id int64) error
}
