package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseRole(t *testing.T) {
	for _, s := range []string{"Admin", "User"} {
		r, err := domain.ParseRole(s)
		require.NoError(t, err)
		require.Equal(t, s, r.String())
	}
	for _, s := range []string{"", "admin", "root", "USER"} {
		_, err := domain.ParseRole(s)
		require.ErrorIs(t, err, domain.ErrInvalidRole, s)
	}
}

func TestPublic_OmitsCredentials(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	acct := domain.Account{
		ID:                "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
		Email:             "a@x.com",
		Profile:           domain.Profile{FirstName: "Ada", LastName: "Lovelace"},
		PasswordHash:      "$argon2id$secret",
		Role:              domain.RoleUser,
		VerificationToken: ptr("verify-fp"),
		ResetToken:        ptr("reset-fp"),
		ResetTokenExpiry:  &expiry,
	}

	raw, err := json.Marshal(acct.Public())
	require.NoError(t, err)
	for _, leak := range []string{"$argon2id$secret", "verify-fp", "reset-fp", "PasswordHash", "ResetToken", "VerificationToken"} {
		require.NotContains(t, string(raw), leak)
	}
	require.Equal(t, "Ada", acct.Public().Profile.FirstName)
}

func TestApply_ReturnsNewRecord(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(48 * time.Hour)
	orig := domain.Account{
		ID:          "id",
		Email:       "a@x.com",
		Profile:     domain.Profile{FirstName: "Ada", LastName: "Lovelace", Bio: "math"},
		Role:        domain.RoleUser,
		DateCreated: created,
	}

	admin := domain.RoleAdmin
	next := orig.Apply(domain.AccountPatch{
		FirstName: ptr("Augusta"),
		Email:     ptr("  Ada@Example.COM "),
		Role:      &admin,
		Password:  ptr("ignored-here"),
	}, now)

	require.Equal(t, "Augusta", next.FirstName)
	require.Equal(t, "Lovelace", next.LastName)
	require.Equal(t, "math", next.Bio)
	require.Equal(t, "ada@example.com", next.Email)
	require.Equal(t, domain.RoleAdmin, next.Role)
	require.Equal(t, created, next.DateCreated)
	require.Equal(t, now, *next.DateUpdated)

	require.Equal(t, "Ada", orig.FirstName, "original must not be mutated")
	require.Equal(t, domain.RoleUser, orig.Role)
	require.Nil(t, orig.DateUpdated)
}

func TestResetPending(t *testing.T) {
	now := time.Now()
	past, future := now.Add(-time.Second), now.Add(time.Second)

	require.False(t, domain.Account{}.ResetPending(now))
	require.False(t, domain.Account{ResetToken: ptr("x"), ResetTokenExpiry: &past}.ResetPending(now))
	require.False(t, domain.Account{ResetToken: ptr("x"), ResetTokenExpiry: &now}.ResetPending(now), "expiry equal to now is expired")
	require.True(t, domain.Account{ResetToken: ptr("x"), ResetTokenExpiry: &future}.ResetPending(now))
}

func TestIdentity_CanAccess(t *testing.T) {
	tests := []struct {
		name   string
		id     domain.Identity
		target string
		want   bool
	}{
		{"owner", domain.Identity{AccountID: "a", Role: domain.RoleUser}, "a", true},
		{"other user", domain.Identity{AccountID: "a", Role: domain.RoleUser}, "b", false},
		{"admin on other", domain.Identity{AccountID: "a", Role: domain.RoleAdmin}, "b", true},
		{"anonymous", domain.Identity{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.id.CanAccess(tt.target))
		})
	}

	require.True(t, domain.Identity{AccountID: "a", Role: domain.RoleAdmin}.CanAssignRole())
	require.False(t, domain.Identity{AccountID: "a", Role: domain.RoleUser}.CanAssignRole())
}
