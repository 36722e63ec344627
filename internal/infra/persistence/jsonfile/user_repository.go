package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	dom "example.com/user-admin/internal/domain/user"
)

type document struct {
	Users []dom.User `json:"users"`
}

// UserRepository keeps the users resource in one flat JSON document on disk.
// Every mutation rewrites the whole file.
type UserRepository struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads path, creating an empty document when the file does not exist yet.
func Open(path string) (*UserRepository, error) {
	r := &UserRepository{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.doc.Users = []dom.User{}
		return r, r.flush()
	case err != nil:
		return nil, err
	}
	if err := json.Unmarshal(data, &r.doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if r.doc.Users == nil {
		r.doc.Users = []dom.User{}
	}
	return r, nil
}

func (r *UserRepository) Create(ctx context.Context, c dom.Candidate) (*dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByEmail(c.Email) >= 0 {
		return nil, dom.ErrEmailAlreadyUsed
	}
	u := dom.User{ID: r.nextID(), Name: c.Name, Email: c.Email, Role: c.Role}
	r.doc.Users = append(r.doc.Users, u)
	if err := r.flush(); err != nil {
		r.doc.Users = r.doc.Users[:len(r.doc.Users)-1]
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, dom.ErrUserNotFound
	}
	u := r.doc.Users[i]
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByEmail(email)
	if i < 0 {
		return nil, dom.ErrUserNotFound
	}
	u := r.doc.Users[i]
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, filter dom.ListUsersFilter) ([]*dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	users := []*dom.User{}
	for _, u := range r.doc.Users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Name), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) &&
			!strings.Contains(strings.ToLower(string(u.Role)), q) {
			continue
		}
		u := u
		users = append(users, &u)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *dom.User) (*dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(u.ID)
	if i < 0 {
		return nil, dom.ErrUserNotFound
	}
	if j := r.indexByEmail(u.Email); j >= 0 && j != i {
		return nil, dom.ErrEmailAlreadyUsed
	}
	prev := r.doc.Users[i]
	r.doc.Users[i] = *u
	if err := r.flush(); err != nil {
		r.doc.Users[i] = prev
		return nil, err
	}
	updated := *u
	return &updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return dom.ErrUserNotFound
	}
	prev := r.doc.Users
	users := make([]dom.User, 0, len(prev)-1)
	users = append(users, prev[:i]...)
	users = append(users, prev[i+1:]...)
	r.doc.Users = users
	if err := r.flush(); err != nil {
		r.doc.Users = prev
		return err
	}
	return nil
}

func (r *UserRepository) indexByID(id int64) int {
	for i, u := range r.doc.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (r *UserRepository) indexByEmail(email string) int {
	for i, u := range r.doc.Users {
		if u.Email == email {
			return i
		}
	}
	return -1
}

func (r *UserRepository) nextID() int64 {
	var highest int64
	for _, u := range r.doc.Users {
		if u.ID > highest {
			highest = u.ID
		}
	}
	return highest + 1
}

// flush writes the document to a temp file next to path and renames it into place.
func (r *UserRepository) flush() error {
	data, err := json.MarshalIndent(r.doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".users-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
