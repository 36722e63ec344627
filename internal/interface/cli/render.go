package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	domuser "example.com/user-admin/internal/domain/user"
	"example.com/user-admin/internal/usecase/listing"
)

var columns = []struct {
	field string
	title string
}{
	{"id", "ID"},
	{"name", "NAME"},
	{"email", "EMAIL"},
	{"role", "ROLE"},
}

func renderRoles(w io.Writer, roles []string, active string) {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		if strings.EqualFold(r, active) {
			r = "[" + r + "]"
		}
		parts = append(parts, r)
	}
	fmt.Fprintf(w, "Roles: %s\n", strings.Join(parts, " | "))
}

func renderTable(w io.Writer, users []domuser.User, state listing.ViewState) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, 0, len(columns))
	for _, col := range columns {
		title := col.title
		if col.field == state.SortField {
			if state.SortDirection == listing.Desc {
				title += " v"
			} else {
				title += " ^"
			}
		}
		headers = append(headers, title)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
	}
	_ = tw.Flush()
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
	}
}

func renderFooter(w io.Writer, p listing.Page, current int) {
	if p.Total == 0 {
		fmt.Fprintln(w, "Showing 0 of 0")
		return
	}
	fmt.Fprintf(w, "Showing %d-%d of %d (page %d/%d)\n", p.Start+1, p.End, p.Total, current, p.TotalPages)
}

func renderDetails(w io.Writer, u domuser.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
	_ = tw.Flush()
}
