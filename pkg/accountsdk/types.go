package accountsdk

import "time"

// Role names accepted on the wire.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Error codes returned in ErrorResponse.Error.
const (
	ErrorCodeValidation         = "validation_error"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidID          = "invalid_id"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeConflict           = "conflict"
	ErrorCodeUnauthorized       = "unauthorized"
	ErrorCodeServerError        = "server_error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse is returned by operations that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// Account is the public projection of an account. Credentials and
// verification state are never part of it.
type Account struct {
	ID          string     `json:"id"`
	Title       string     `json:"title,omitempty"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Location    string     `json:"location,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Website     string     `json:"website,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	DateCreated time.Time  `json:"dateCreated"`
	DateUpdated *time.Time `json:"dateUpdated,omitempty"`
}

// AuthenticateResponse is the account projection plus its bearer token.
type AuthenticateResponse struct {
	Account
	JWTToken string `json:"jwtToken"`
}

// RegisterRequest is the body of POST /accounts/register.
type RegisterRequest struct {
	Title           string `json:"title,omitempty"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms" validate:"required"`
	Bio             string `json:"bio,omitempty"`
	Website         string `json:"website,omitempty"`
	Location        string `json:"location,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
}

// TokenRequest is the body of verify-email and validate-reset-token.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// AuthenticateRequest is the body of POST /accounts/authenticate.
type AuthenticateRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is the body of POST /accounts/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /accounts/reset-password.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// CreateAccountRequest is the body of POST /accounts (Admin only).
type CreateAccountRequest struct {
	Title           string `json:"title,omitempty"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=Admin User"`
	Bio             string `json:"bio,omitempty"`
	Website         string `json:"website,omitempty"`
	Location        string `json:"location,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
}

// UpdateAccountRequest is the body of PUT /accounts/{id}. Empty fields are
// left unchanged. Role may only be sent by an Admin.
type UpdateAccountRequest struct {
	Title           string `json:"title,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"confirmPassword,omitempty" validate:"required_with=Password,omitempty,eqfield=Password"`
	Role            string `json:"role,omitempty" validate:"omitempty,oneof=Admin User"`
	Bio             string `json:"bio,omitempty"`
	Website         string `json:"website,omitempty"`
	Location        string `json:"location,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
