package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/righthome/cosmos-api/internal/api/metrics"
	"github.com/righthome/cosmos-api/internal/core/domain"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

const sessionCookieName = "token"

// AccountHandler handles HTTP requests for the account lifecycle.
type AccountHandler struct {
	service      ports.AccountService
	sessionTTL   time.Duration
	secureCookie bool
}

func NewAccountHandler(service ports.AccountService, sessionTTL time.Duration, secureCookie bool) *AccountHandler {
	return &AccountHandler{service: service, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

// Register handles POST /users/register.
//
// @Summary      Register a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      registerRequest  true  "Registration data"
// @Success      201      {object}  response{data=authResponse}
// @Failure      400      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /users/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.Inc()
	msg := "registration successful, please check your email to verify your account"
	if result.EmailSent {
		metrics.VerificationEmailsTotal.WithLabelValues("sent").Inc()
	} else {
		metrics.VerificationEmailsTotal.WithLabelValues("failed").Inc()
		msg = "registration successful, but the verification email could not be sent"
	}

	return c.JSON(http.StatusCreated, response{
		Success: true,
		Message: msg,
		Data: authResponse{
			Token:   result.Token,
			Account: toAccountResponse(result.Account),
		},
	})
}

// VerifyEmail handles POST /users/verify-email.
//
// @Summary      Verify an account email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      verifyEmailRequest  true  "Email and verification token"
// @Success      200      {object}  response
// @Failure      400      {object}  errorResponse
// @Router       /users/verify-email [post]
func (h *AccountHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.VerifyEmail(c.Request().Context(), req.Email, req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "email verified successfully"})
}

// Login handles POST /users/login. On success the session token is returned
// in the body and also set as an http-only cookie.
//
// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      loginRequest  true  "Credentials"
// @Success      200      {object}  response{data=authResponse}
// @Failure      401      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      429      {object}  errorResponse
// @Router       /users/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	h.setSessionCookie(c, result.Token)
	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: "login successful",
		Data: authResponse{
			Token:   result.Token,
			Account: toAccountResponse(result.Account),
		},
	})
}

// Logout handles POST /users/logout. Session tokens are stateless, so this
// only clears the cookie; a bearer token held by the client stays valid until
// it expires.
//
// @Summary      Log out
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response
// @Router       /users/logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, response{Success: true, Message: "logged out"})
}

// ForgotPassword handles POST /users/forgot-password.
//
// @Summary      Request a password reset email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      forgotPasswordRequest  true  "Account email"
// @Success      200      {object}  response
// @Failure      404      {object}  errorResponse
// @Router       /users/forgot-password [post]
func (h *AccountHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "password reset email sent"})
}

// ResetPassword handles POST /users/reset-password.
//
// @Summary      Reset the password with an emailed token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200      {object}  response
// @Failure      400      {object}  errorResponse
// @Router       /users/reset-password [post]
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "password reset successfully"})
}

// ChangePassword handles POST /users/change-password and its alias
// /users/update-password.
//
// @Summary      Change the password of the authenticated account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      changePasswordRequest  true  "Current and new password"
// @Success      200      {object}  response
// @Failure      401      {object}  errorResponse
// @Router       /users/change-password [post]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangePassword(c.Request().Context(), accountID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "password updated successfully"})
}

// UpdateProfile handles POST /users/update-profile. Changing the email does
// not take effect immediately: the new address receives a confirmation link
// and the account keeps its current email until the link is used.
//
// @Summary      Update the authenticated account's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      updateProfileRequest  true  "Profile fields"
// @Success      200      {object}  response{data=profileResponse}
// @Failure      400      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /users/update-profile [post]
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.UpdateProfile(c.Request().Context(), ports.UpdateProfileInput{
		AccountID:                accountID,
		Name:                     req.Name,
		Email:                    req.Email,
		Phone:                    req.Phone,
		Address:                  req.Address,
		RequireEmailVerification: req.RequireEmailVerification,
	})
	if err != nil {
		return err
	}

	msg := "profile updated successfully"
	if result.RequiresEmailVerification {
		msg = "profile updated, please confirm your new email address"
	}
	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: msg,
		Data: profileResponse{
			Account:                   toAccountResponse(result.Account),
			RequiresEmailVerification: result.RequiresEmailVerification,
		},
	})
}

// VerifyEmailChange handles POST /users/verify-email-change.
//
// @Summary      Confirm a pending email change
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      verifyEmailRequest  true  "New email and change token"
// @Success      200      {object}  response
// @Failure      400      {object}  errorResponse
// @Router       /users/verify-email-change [post]
func (h *AccountHandler) VerifyEmailChange(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.VerifyEmailChange(c.Request().Context(), req.Email, req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "email address updated successfully"})
}

// DeleteAccount handles POST /users/delete-account.
//
// @Summary      Delete the authenticated account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response
// @Failure      403  {object}  errorResponse
// @Router       /users/delete-account [post]
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteAccount(c.Request().Context(), accountID); err != nil {
		return err
	}
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, response{Success: true, Message: "account deleted"})
}

// Me handles GET /users/me.
//
// @Summary      Fetch the authenticated account's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response{data=accountResponse}
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	account, err := h.service.GetAccount(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: toAccountResponse(account)})
}

func (h *AccountHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AccountHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "unverified"
	default:
		return "invalid"
	}
}
