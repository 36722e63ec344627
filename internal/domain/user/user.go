package user

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Candidate is a user that has not been stored yet.
type Candidate struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=Admin User"`
}

// Patch carries the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *Role   `json:"role,omitempty"`
}

// Apply returns u with the set fields of p copied over. The id never changes.
func (p Patch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	return u
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil
}

type ListUsersFilter struct {
	Role  *Role
	Query string
}

// Ack is the store's acknowledgement of a deletion. Its shape is not fixed.
type Ack map[string]any
