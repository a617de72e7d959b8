package accountsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// Client calls the accounts service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Origin is sent as the Origin header. The service builds email links
	// from it; when empty, emails carry raw tokens instead.
	Origin string
}

// NewClient returns a Client with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) message(ctx context.Context, path string, body any, status int) (*MessageResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}
	var out MessageResponse
	if err := decodeJSON(resp, &out, status); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an unverified account. The response is identical
// whether or not the email was already registered.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	return c.message(ctx, "/accounts/register", req, http.StatusOK)
}

// VerifyEmail consumes a verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*MessageResponse, error) {
	return c.message(ctx, "/accounts/verify-email", TokenRequest{Token: token}, http.StatusCreated)
}

// Authenticate exchanges credentials for a bearer token.
func (c *Client) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/accounts/authenticate", "", req)
	if err != nil {
		return nil, err
	}
	var out AuthenticateResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	return c.message(ctx, "/accounts/forgot-password", ForgotPasswordRequest{Email: email}, http.StatusOK)
}

// ValidateResetToken checks that a reset token is known and unexpired.
func (c *Client) ValidateResetToken(ctx context.Context, token string) (*MessageResponse, error) {
	return c.message(ctx, "/accounts/validate-reset-token", TokenRequest{Token: token}, http.StatusOK)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	return c.message(ctx, "/accounts/reset-password", req, http.StatusCreated)
}

// ListAccounts returns every account (Admin only).
func (c *Client) ListAccounts(ctx context.Context, token string) ([]Account, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/accounts", token, nil)
	if err != nil {
		return nil, err
	}
	var out []Account
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccount fetches one account (self or Admin).
func (c *Client) GetAccount(ctx context.Context, token, id string) (*Account, error) {
	return c.account(ctx, http.MethodGet, "/accounts/"+url.PathEscape(id), token, nil)
}

// CreateAccount creates a verified account (Admin only).
func (c *Client) CreateAccount(ctx context.Context, token string, req CreateAccountRequest) (*Account, error) {
	return c.account(ctx, http.MethodPost, "/accounts", token, req)
}

// UpdateAccount applies a partial update (self or Admin).
func (c *Client) UpdateAccount(ctx context.Context, token, id string, req UpdateAccountRequest) (*Account, error) {
	return c.account(ctx, http.MethodPut, "/accounts/"+url.PathEscape(id), token, req)
}

// DeleteAccount permanently removes an account (self or Admin).
func (c *Client) DeleteAccount(ctx context.Context, token, id string) (*MessageResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(id), token, nil)
	if err != nil {
		return nil, err
	}
	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) account(ctx context.Context, method, path, token string, body any) (*Account, error) {
	resp, err := c.doRequest(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}
	var out Account
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness calls /livez.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness calls /readyz.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJWKS fetches the public keys that verify bearer tokens.
func (c *Client) GetJWKS(ctx context.Context) (*jwtx.JWKS, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", "", nil)
	if err != nil {
		return nil, err
	}
	var out jwtx.JWKS
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
