//go:build integration

package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies the probes report every dependency.
func TestHealthEndpoints(t *testing.T) {
	e := setupAccountsService(t)

	live, err := e.client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := e.client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, map[string]string{"database": "ok", "signer": "ok", "queue": "ok"}, ready.Checks)

	jwks, err := e.client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)
}
