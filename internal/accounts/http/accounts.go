package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/idx"
)

// AccountsHandler serves the authenticated /accounts endpoints.
type AccountsHandler struct {
	AccountService *service.AccountService
}

func identityFromRequest(r *http.Request) (domain.Identity, bool) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		return domain.Identity{}, false
	}
	return domain.Identity{AccountID: p.Subject, Role: domain.Role(p.Role)}, true
}

// authorizeTarget resolves the {id} path value and checks the caller may act
// on it. Unparseable ids are passed through so the service reports them.
func authorizeTarget(w http.ResponseWriter, r *http.Request) (domain.Identity, string, bool) {
	id := r.PathValue("id")
	target := id
	if parsed, err := idx.Parse(id); err == nil {
		target = parsed.String()
	}

	ident, ok := identityFromRequest(r)
	if !ok || !ident.CanAccess(target) {
		writeUnauthorized(w)
		return domain.Identity{}, "", false
	}
	return ident, id, true
}

// HandleList godoc
//
//	@Summary	List accounts
//	@Tags		Accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		accountsdk.Account
//	@Failure	401	{object}	accountsdk.ErrorResponse
//	@Router		/accounts [get].
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.AccountService.GetAccounts(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Account not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccounts(accounts))
}

// HandleGet godoc
//
//	@Summary	Get an account
//	@Tags		Accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Account ID"
//	@Success	200	{object}	accountsdk.Account
//	@Failure	400	{object}	accountsdk.ErrorResponse	"invalid_id"
//	@Failure	401	{object}	accountsdk.ErrorResponse
//	@Failure	404	{object}	accountsdk.ErrorResponse
//	@Router		/accounts/{id} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, id, ok := authorizeTarget(w, r)
	if !ok {
		return
	}

	acct, err := h.AccountService.GetAccountByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Account not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleCreate godoc
//
//	@Summary		Create an account
//	@Description	Creates a verified account with the given role.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		accountsdk.CreateAccountRequest	true	"Account details"
//	@Success		200		{object}	accountsdk.Account
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Failure		401		{object}	accountsdk.ErrorResponse
//	@Failure		409		{object}	accountsdk.ErrorResponse	"conflict"
//	@Router			/accounts [post].
func (h *AccountsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.CreateAccountRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if details := req.Validate(); details != nil {
		writeValidationError(w, details)
		return
	}

	acct, err := h.AccountService.Create(r.Context(), domain.NewAccount{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Profile: domain.Profile{
			Title:     req.Title,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Location:  req.Location,
			Bio:       req.Bio,
			Website:   req.Website,
			ImageURL:  req.ImageURL,
		},
	})
	if err != nil {
		writeConflictAware(w, r, err, req.Email, "registered")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleUpdate godoc
//
//	@Summary		Update an account
//	@Description	Applies the non-empty fields of the request. Only an Admin may change roles.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Account ID"
//	@Param			request	body		accountsdk.UpdateAccountRequest	true	"Fields to change"
//	@Success		200		{object}	accountsdk.Account
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error or invalid_id"
//	@Failure		401		{object}	accountsdk.ErrorResponse
//	@Failure		404		{object}	accountsdk.ErrorResponse
//	@Failure		409		{object}	accountsdk.ErrorResponse	"conflict"
//	@Router			/accounts/{id} [put].
func (h *AccountsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ident, id, ok := authorizeTarget(w, r)
	if !ok {
		return
	}

	var req accountsdk.UpdateAccountRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if details := req.Validate(ident.CanAssignRole()); details != nil {
		writeValidationError(w, details)
		return
	}

	acct, err := h.AccountService.Update(r.Context(), id, toPatch(req))
	if err != nil {
		writeConflictAware(w, r, err, req.Email, "taken")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleDelete godoc
//
//	@Summary	Delete an account
//	@Tags		Accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Account ID"
//	@Success	200	{object}	accountsdk.MessageResponse
//	@Failure	400	{object}	accountsdk.ErrorResponse	"invalid_id"
//	@Failure	401	{object}	accountsdk.ErrorResponse
//	@Failure	404	{object}	accountsdk.ErrorResponse
//	@Router		/accounts/{id} [delete].
func (h *AccountsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, id, ok := authorizeTarget(w, r)
	if !ok {
		return
	}

	if err := h.AccountService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Account not found")
		return
	}
	writeMessage(w, http.StatusOK, "Account deleted successfully")
}

func writeConflictAware(w http.ResponseWriter, r *http.Request, err error, email, verb string) {
	if errors.Is(err, service.ErrConflict) {
		httpx.WriteError(w, http.StatusConflict, accountsdk.ErrorCodeConflict,
			fmt.Sprintf("Email %q is already %s", domain.NormalizeEmail(email), verb))
		return
	}
	writeServiceError(w, r, err, "Account not found")
}
