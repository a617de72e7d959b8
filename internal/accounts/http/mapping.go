package http

import (
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
)

func toAccount(a domain.PublicAccount) accountsdk.Account {
	return accountsdk.Account{
		ID:          a.ID,
		Title:       a.Profile.Title,
		FirstName:   a.Profile.FirstName,
		LastName:    a.Profile.LastName,
		Email:       a.Email,
		Role:        a.Role.String(),
		Location:    a.Profile.Location,
		Bio:         a.Profile.Bio,
		Website:     a.Profile.Website,
		ImageURL:    a.Profile.ImageURL,
		DateCreated: a.DateCreated,
		DateUpdated: a.DateUpdated,
	}
}

func toAccounts(in []domain.PublicAccount) []accountsdk.Account {
	out := make([]accountsdk.Account, len(in))
	for i, a := range in {
		out[i] = toAccount(a)
	}
	return out
}

// optional treats the empty string as "not provided".
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toPatch(req accountsdk.UpdateAccountRequest) domain.AccountPatch {
	p := domain.AccountPatch{
		Title:     optional(req.Title),
		FirstName: optional(req.FirstName),
		LastName:  optional(req.LastName),
		Location:  optional(req.Location),
		Bio:       optional(req.Bio),
		Website:   optional(req.Website),
		ImageURL:  optional(req.ImageURL),
		Email:     optional(req.Email),
		Password:  optional(req.Password),
	}
	if req.Role != "" {
		role := domain.Role(req.Role)
		p.Role = &role
	}
	return p
}
