package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	domuser "example.com/user-admin/internal/domain/user"
)

// Field is one input of the user form. The set of kinds is closed:
// TextField and SelectField.
type Field interface {
	Key() string
	Title() string
	isField()
}

type TextField struct {
	Name        string
	Label       string
	Placeholder string
	InputType   string // text or email
}

type SelectField struct {
	Name    string
	Label   string
	Options []string
	Default string
}

func (f TextField) Key() string   { return f.Name }
func (f TextField) Title() string { return f.Label }
func (TextField) isField()        {}

func (f SelectField) Key() string   { return f.Name }
func (f SelectField) Title() string { return f.Label }
func (SelectField) isField()        {}

// UserFormFields describes the create and edit forms.
var UserFormFields = []Field{
	TextField{Name: "name", Label: "Name", Placeholder: "John Doe", InputType: "text"},
	TextField{Name: "email", Label: "Email", Placeholder: "john.doe@example.com", InputType: "email"},
	SelectField{Name: "role", Label: "Role", Options: roleOptions(), Default: string(domuser.RoleUser)},
}

func roleOptions() []string {
	opts := make([]string, 0, len(domuser.AllowedRoles))
	for _, r := range domuser.AllowedRoles {
		opts = append(opts, string(r))
	}
	return opts
}

// RenderField writes the prompt for f, preceded by errMsg when a previous
// submission failed on this field.
func RenderField(w io.Writer, f Field, errMsg string) {
	if errMsg != "" {
		fmt.Fprintf(w, "  ! %s\n", errMsg)
	}
	switch f := f.(type) {
	case TextField:
		if f.Placeholder != "" {
			fmt.Fprintf(w, "%s (e.g. %s): ", f.Label, f.Placeholder)
			return
		}
		fmt.Fprintf(w, "%s: ", f.Label)
	case SelectField:
		fmt.Fprintf(w, "%s [%s]", f.Label, strings.Join(f.Options, "/"))
		if f.Default != "" {
			fmt.Fprintf(w, " (default %s)", f.Default)
		}
		fmt.Fprint(w, ": ")
	}
}

// ParseField validates raw input for f and returns the value to submit.
func ParseField(f Field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	switch f := f.(type) {
	case TextField:
		if v == "" {
			return "", fmt.Errorf("%s is required", strings.ToLower(f.Label))
		}
		if f.InputType == "email" && !strings.Contains(v, "@") {
			return "", fmt.Errorf("invalid email address")
		}
		return v, nil
	case SelectField:
		if v == "" {
			v = f.Default
		}
		if !slices.Contains(f.Options, v) {
			return "", fmt.Errorf("choose one of %s", strings.Join(f.Options, ", "))
		}
		return v, nil
	}
	return "", fmt.Errorf("unknown field %q", f.Key())
}

func fieldByKey(key string) Field {
	for _, f := range UserFormFields {
		if f.Key() == key {
			return f
		}
	}
	return nil
}
