package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	dom "example.com/user-admin/internal/domain/user"
)

// Page is one visible slice of a derived list.
type Page struct {
	Users      []dom.User
	Total      int
	TotalPages int
	// Start and End are the half-open bounds of Users within the sorted list.
	Start int
	End   int
}

// Result is what the console renders for one view state.
type Result struct {
	Roles []string
	Page
}

// Derive runs role enumeration, filter, sort and pagination over the full list.
// The page is not clamped; an out-of-range page yields no users.
func Derive(users []dom.User, v ViewState) Result {
	filtered := Filter(users, v.Search, v.RoleFilter)
	sorted := Sort(filtered, v.SortField, v.SortDirection)
	return Result{
		Roles: Roles(users),
		Page:  Paginate(sorted, v.Page, ItemsPerPage),
	}
}

// Roles lists AllRoles followed by each distinct role in first-seen order.
func Roles(users []dom.User) []string {
	roles := []string{AllRoles}
	seen := make(map[string]struct{}, 2)
	for _, u := range users {
		r := string(u.Role)
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	return roles
}

// Filter keeps users whose name, email or role contains search (case-insensitive)
// and whose role equals roleFilter (case-insensitive) unless it is AllRoles.
func Filter(users []dom.User, search, roleFilter string) []dom.User {
	q := strings.ToLower(search)
	out := make([]dom.User, 0, len(users))
	for _, u := range users {
		matchesSearch := strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(string(u.Role)), q)
		matchesRole := roleFilter == AllRoles || strings.EqualFold(string(u.Role), roleFilter)
		if matchesSearch && matchesRole {
			out = append(out, u)
		}
	}
	return out
}

type fieldKind int

const (
	kindUnsupported fieldKind = iota
	kindString
	kindNumber
)

func kindOf(field string) fieldKind {
	switch field {
	case "name", "email", "role":
		return kindString
	case "id":
		return kindNumber
	}
	return kindUnsupported
}

func stringField(u dom.User, field string) string {
	switch field {
	case "name":
		return u.Name
	case "email":
		return u.Email
	}
	return string(u.Role)
}

// Sort returns a stably sorted copy. Text fields use English collation, id sorts
// numerically and any other field leaves the order unchanged.
func Sort(users []dom.User, field string, dir Direction) []dom.User {
	out := make([]dom.User, len(users))
	copy(out, users)

	sign := 1
	if dir == Desc {
		sign = -1
	}

	switch kindOf(field) {
	case kindString:
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return sign*col.CompareString(stringField(out[i], field), stringField(out[j], field)) < 0
		})
	case kindNumber:
		sort.SliceStable(out, func(i, j int) bool {
			if dir == Desc {
				return out[i].ID > out[j].ID
			}
			return out[i].ID < out[j].ID
		})
	}
	return out
}

// Paginate cuts out page (1-based) of size perPage.
func Paginate(users []dom.User, page, perPage int) Page {
	n := len(users)
	if perPage < 1 {
		perPage = ItemsPerPage
	}
	p := Page{
		Users:      []dom.User{},
		Total:      n,
		TotalPages: (n + perPage - 1) / perPage,
	}

	if page < 1 || page > p.TotalPages {
		return p
	}
	start := (page - 1) * perPage
	end := page * perPage
	if end > n {
		end = n
	}
	p.Start, p.End = start, end
	p.Users = users[start:end]
	return p
}
