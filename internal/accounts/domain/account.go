package domain

import (
	"strings"
	"time"
)

// Profile holds the descriptive, user editable fields of an account.
type Profile struct {
	Title     string
	FirstName string
	LastName  string
	Location  string
	Bio       string
	Website   string
	ImageURL  string
}

type Account struct {
	ID    string
	Email string // trimmed, lower-cased
	Profile

	PasswordHash string // argon2id PHC string
	Role         Role
	AcceptTerms  bool

	// Token fields hold fingerprints, never the raw token sent by email.
	VerificationToken *string
	IsVerified        bool
	ResetToken        *string
	ResetTokenExpiry  *time.Time

	DateCreated time.Time
	DateUpdated *time.Time
}

// PublicAccount is the projection returned to API consumers.
type PublicAccount struct {
	ID          string
	Email       string
	Role        Role
	Profile     Profile
	DateCreated time.Time
	DateUpdated *time.Time
}

// Public strips credentials and token state.
func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:          a.ID,
		Email:       a.Email,
		Role:        a.Role,
		Profile:     a.Profile,
		DateCreated: a.DateCreated,
		DateUpdated: a.DateUpdated,
	}
}

// ResetPending reports whether a reset token is still usable at now.
func (a Account) ResetPending(now time.Time) bool {
	return a.ResetToken != nil && a.ResetTokenExpiry != nil && a.ResetTokenExpiry.After(now)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountPatch lists the fields an update may change. Nil means unchanged.
type AccountPatch struct {
	Title     *string
	FirstName *string
	LastName  *string
	Location  *string
	Bio       *string
	Website   *string
	ImageURL  *string
	Email     *string
	Role      *Role

	// Password is plaintext; the service hashes it before persisting.
	Password *string
}

// Apply returns a copy of a with p merged in and DateUpdated set to now.
// The receiver is left untouched.
func (a Account) Apply(p AccountPatch, now time.Time) Account {
	next := a

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&next.Title, p.Title)
	set(&next.FirstName, p.FirstName)
	set(&next.LastName, p.LastName)
	set(&next.Location, p.Location)
	set(&next.Bio, p.Bio)
	set(&next.Website, p.Website)
	set(&next.ImageURL, p.ImageURL)

	if p.Email != nil {
		next.Email = NormalizeEmail(*p.Email)
	}
	if p.Role != nil {
		next.Role = *p.Role
	}

	updated := now
	next.DateUpdated = &updated
	return next
}

// Registration is the input of self-service sign-up.
type Registration struct {
	Email       string
	Password    string
	AcceptTerms bool
	Profile
}

// NewAccount is the input of the admin create path.
type NewAccount struct {
	Email    string
	Password string
	Role     Role
	Profile
}

// AuthResult is returned by a successful authentication.
type AuthResult struct {
	Account   PublicAccount
	Token     string
	ExpiresAt time.Time
}
