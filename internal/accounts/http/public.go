package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// PublicHandler serves the unauthenticated account lifecycle endpoints.
type PublicHandler struct {
	AccountService *service.AccountService
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	httpx.WriteJSON(w, code, accountsdk.MessageResponse{Message: msg})
}

// HandleRegister godoc
//
//	@Summary		Register an account
//	@Description	Creates an unverified account and emails a verification token. The response is the same
//	@Description	whether or not the email was already registered. The first account ever registered is an Admin.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"Registration details"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Router			/accounts/register [post].
func (h *PublicHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if details := req.Validate(); details != nil {
		writeValidationError(w, details)
		return
	}

	reg := domain.Registration{
		Email:       req.Email,
		Password:    req.Password,
		AcceptTerms: req.AcceptTerms,
		Profile: domain.Profile{
			Title:     req.Title,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Location:  req.Location,
			Bio:       req.Bio,
			Website:   req.Website,
			ImageURL:  req.ImageURL,
		},
	}
	if err := h.AccountService.Register(r.Context(), reg, r.Header.Get("Origin")); err != nil {
		writeServiceError(w, r, err, "Account not found")
		return
	}

	writeMessage(w, http.StatusOK, "Registration successful, please check your email for verification instructions")
}

// HandleVerifyEmail godoc
//
//	@Summary		Verify an email address
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.TokenRequest	true	"Verification token"
//	@Success		201		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Failure		404		{object}	accountsdk.ErrorResponse	"not_found"
//	@Router			/accounts/verify-email [post].
func (h *PublicHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.TokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if details := req.Validate(); details != nil {
		writeValidationError(w, details)
		return
	}

	if err := h.AccountService.VerifyEmail(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err, "Verification failed")
		return
	}

	writeMessage(w, http.StatusCreated, "Verification successful, you can now login")
}

// HandleAuthenticate godoc
//
//	@Summary		Authenticate
//	@Description	Exchanges the credentials of a verified account for a bearer token.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.AuthenticateRequest	true	"Credentials"
//	@Success		200		{object}	accountsdk.AuthenticateResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error or invalid_credentials"
//	@Router			/accounts/authenticate [post].
func (h *PublicHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.AuthenticateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if details := req.Validate(); details != nil {
		writeValidationError(w, details)
		return
	}

	res, err := h.AccountService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Account not found")
		return
	}
	if res == nil {
		httpx.WriteError(w, http.StatusBadRequest, accountsdk.ErrorCodeInvalidCredentials, "Email or password is incorrect")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.AuthenticateResponse{
		Account:  toAccount(res.Account),
		JWTToken: res.Token,
	})
}

// HandleForgotPassword godoc
//
//	@Summary		Request a password reset
//	@Description	Emails a reset token valid for 24 hours. Unknown emails get the same response.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Router			/accounts/forgot-password [post].
func (h *PublicHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if details := req.Validate(); details != nil {
		writeValidationError(w, details)
		return
	}

	if err := h.AccountService.ForgotPassword(r.Context(), req.Email, r.Header.Get("Origin")); err != nil {
		writeServiceError(w, r, err, "Account not found")
		return
	}

	writeMessage(w, http.StatusOK, "Please check your email for password reset instructions")
}

// HandleValidateResetToken godoc
//
//	@Summary		Validate a password reset token
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.TokenRequest	true	"Reset token"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error or invalid_token"
//	@Router			/accounts/validate-reset-token [post].
func (h *PublicHandler) HandleValidateResetToken(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.TokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if details := req.Validate(); details != nil {
		writeValidationError(w, details)
		return
	}

	if err := h.AccountService.ValidateResetToken(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err, "Invalid token")
		return
	}

	writeMessage(w, http.StatusOK, "Token is valid")
}

// HandleResetPassword godoc
//
//	@Summary		Reset a password
//	@Description	Sets a new password using a reset token. The account is marked verified.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ResetPasswordRequest	true	"Reset token and new password"
//	@Success		201		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error or invalid_token"
//	@Router			/accounts/reset-password [post].
func (h *PublicHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if details := req.Validate(); details != nil {
		writeValidationError(w, details)
		return
	}

	if err := h.AccountService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, r, err, "Invalid token")
		return
	}

	writeMessage(w, http.StatusCreated, "Password reset successfully, you can now login")
}
