package user

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Normalize trims the text fields. Validation runs on the trimmed values.
func (c Candidate) Normalize() Candidate {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	return c
}

// Validate checks c against its tags and reports the first failing field as
// its sentinel error.
func (c Candidate) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch verrs[0].Field() {
	case "Name":
		return ErrNameRequired
	case "Email":
		return ErrInvalidEmail
	case "Role":
		return ErrInvalidRole
	}
	return err
}

func (p Patch) Normalize() Patch {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		p.Email = &email
	}
	return p
}

// Validate checks only the fields that are set.
func (p Patch) Validate() error {
	if p.Name != nil && validate.Var(*p.Name, "required") != nil {
		return ErrNameRequired
	}
	if p.Email != nil && validate.Var(*p.Email, "required,email") != nil {
		return ErrInvalidEmail
	}
	if p.Role != nil && !p.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}
