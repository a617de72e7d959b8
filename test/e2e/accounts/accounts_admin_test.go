//go:build integration

package accounts_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
)

// TestAdminManagesAccounts covers the Admin-only endpoints and ownership.
func TestAdminManagesAccounts(t *testing.T) {
	e := setupAccountsService(t)
	ctx := t.Context()

	admin := e.signup(t, adminEmail, adminPassword)
	user := e.signup(t, "user@example.com", userPassword)

	created, err := e.client.CreateAccount(ctx, admin.JWTToken, accountsdk.CreateAccountRequest{
		FirstName:       "Created",
		LastName:        "ByAdmin",
		Email:           "created@example.com",
		Password:        userPassword,
		ConfirmPassword: userPassword,
		Role:            accountsdk.RoleUser,
	})
	require.NoError(t, err)

	list, err := e.client.ListAccounts(ctx, admin.JWTToken)
	require.NoError(t, err)
	require.Len(t, list, 3)

	_, err = e.client.ListAccounts(ctx, user.JWTToken)
	requireStatus(t, err, http.StatusUnauthorized)

	// Ownership
	_, err = e.client.GetAccount(ctx, user.JWTToken, created.ID)
	requireStatus(t, err, http.StatusUnauthorized)
	_, err = e.client.UpdateAccount(ctx, user.JWTToken, admin.ID, accountsdk.UpdateAccountRequest{LastName: "Pwned"})
	requireStatus(t, err, http.StatusUnauthorized)

	got, err := e.client.GetAccount(ctx, admin.JWTToken, admin.ID)
	require.NoError(t, err)
	require.Equal(t, "Tester", got.LastName)

	// Role changes are Admin-only
	_, err = e.client.UpdateAccount(ctx, user.JWTToken, user.ID, accountsdk.UpdateAccountRequest{Role: accountsdk.RoleAdmin})
	requireStatus(t, err, http.StatusBadRequest)

	updated, err := e.client.UpdateAccount(ctx, admin.JWTToken, user.ID, accountsdk.UpdateAccountRequest{
		Role:     accountsdk.RoleAdmin,
		Location: "Perth",
	})
	require.NoError(t, err)
	require.Equal(t, accountsdk.RoleAdmin, updated.Role)
	require.Equal(t, "Perth", updated.Location)

	_, err = e.client.UpdateAccount(ctx, admin.JWTToken, user.ID, accountsdk.UpdateAccountRequest{Email: "created@example.com"})
	requireStatus(t, err, http.StatusConflict)

	// Deletion revokes the deleted account's token
	_, err = e.client.DeleteAccount(ctx, admin.JWTToken, created.ID)
	require.NoError(t, err)
	_, err = e.client.GetAccount(ctx, admin.JWTToken, created.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = e.client.DeleteAccount(ctx, user.JWTToken, user.ID)
	require.NoError(t, err)
	_, err = e.client.GetAccount(ctx, user.JWTToken, user.ID)
	requireStatus(t, err, http.StatusUnauthorized)
}
