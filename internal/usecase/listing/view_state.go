package listing

import (
	"errors"
	"strings"
)

// AllRoles is the role filter value that disables role filtering.
const AllRoles = "All roles"

// ItemsPerPage is the fixed page size.
const ItemsPerPage = 10

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var ErrInvalidDirection = errors.New("sort direction must be asc or desc")

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Asc, Desc:
		return d, nil
	}
	return "", ErrInvalidDirection
}

func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// ViewState is everything the console knows about how the list is being viewed.
// It is a value; every With* method returns a modified copy.
type ViewState struct {
	Search        string
	RoleFilter    string
	SortField     string
	SortDirection Direction
	Page          int
}

func DefaultViewState() ViewState {
	return ViewState{
		RoleFilter:    AllRoles,
		SortField:     "name",
		SortDirection: Asc,
		Page:          1,
	}
}

// ToggleSort applies a click on a column header: the active field flips its
// direction, any other field becomes active in ascending order.
func (v ViewState) ToggleSort(field string) ViewState {
	if v.SortField == field {
		v.SortDirection = v.SortDirection.Flip()
		return v
	}
	v.SortField = field
	v.SortDirection = Asc
	return v
}

// WithSearch sets the query and goes back to the first page.
func (v ViewState) WithSearch(q string) ViewState {
	v.Search = q
	v.Page = 1
	return v
}

// WithRoleFilter sets the role filter and goes back to the first page.
func (v ViewState) WithRoleFilter(role string) ViewState {
	if strings.TrimSpace(role) == "" {
		role = AllRoles
	}
	v.RoleFilter = role
	v.Page = 1
	return v
}

func (v ViewState) WithPage(page int) ViewState {
	v.Page = page
	return v
}

// Clamp pulls Page back into [1, max(totalPages, 1)].
func (v ViewState) Clamp(totalPages int) ViewState {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case v.Page < 1:
		v.Page = 1
	case v.Page > totalPages:
		v.Page = totalPages
	}
	return v
}
