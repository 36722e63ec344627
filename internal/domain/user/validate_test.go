package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCandidate_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   Candidate
		want error
	}{
		{"valid", Candidate{Name: "Ann", Email: "a@x.com", Role: RoleUser}, nil},
		{"blank name", Candidate{Name: "   ", Email: "a@x.com", Role: RoleUser}, ErrNameRequired},
		{"bad email", Candidate{Name: "Ann", Email: "ann", Role: RoleUser}, ErrInvalidEmail},
		{"bad role", Candidate{Name: "Ann", Email: "a@x.com", Role: "admin"}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Normalize().Validate()
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCandidate_Normalize(t *testing.T) {
	c := Candidate{Name: " Ann ", Email: " a@x.com\n", Role: RoleUser}.Normalize()
	require.Equal(t, Candidate{Name: "Ann", Email: "a@x.com", Role: RoleUser}, c)
}

func TestPatch_Validate(t *testing.T) {
	blank := " "
	bad := "nope"
	role := Role("Owner")
	ok := "Bob"

	require.NoError(t, Patch{}.Validate())
	require.NoError(t, Patch{Name: &ok}.Normalize().Validate())
	require.ErrorIs(t, Patch{Name: &blank}.Normalize().Validate(), ErrNameRequired)
	require.ErrorIs(t, Patch{Email: &bad}.Normalize().Validate(), ErrInvalidEmail)
	require.ErrorIs(t, Patch{Role: &role}.Validate(), ErrInvalidRole)
	require.Equal(t, " ", blank)
}
