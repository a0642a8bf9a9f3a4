package http

import (
	"net/http"
	"net/url"

	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cartloop/insights/internal/domain/auth"
	apperrors "github.com/cartloop/insights/pkg/errors"
)

// AuthHandler exposes account and session endpoints.
type AuthHandler struct {
	authSvc           auth.Service
	postLoginRedirect string
	logger            *slog.Logger
}

// NewAuthHandler constructs the auth HTTP handler.
func NewAuthHandler(authSvc auth.Service, postLoginRedirect string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc:           authSvc,
		postLoginRedirect: postLoginRedirect,
		logger:            logger.With("component", "http.auth_handler"),
	}
}

// Register creates a customer account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, authError(err, "register_failed"))
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, authError(err, "login_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a fresh pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, authError(err, "refresh_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user's account.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authentication", nil))
		return
	}

	user, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, authError(err, "profile_failed"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout revokes linked provider tokens for the authenticated user.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authentication", nil))
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims.UserID); err != nil {
		abortWithError(c, authError(err, "logout_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// GoogleLogin starts the PKCE flow and redirects the browser to Google.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, codeVerifier, codeChallenge, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "oauth_state_failed", "could not initialize sign-in", err))
		return
	}

	authURL, err := h.authSvc.GoogleAuthURL(c.Request.Context(), state, codeChallenge)
	if err != nil {
		abortWithError(c, authError(err, "google_login_failed"))
		return
	}

	setOAuthStateCookie(c, state, codeVerifier)
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback completes the PKCE flow and hands tokens back to the frontend.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	cookie, ok := readOAuthStateCookie(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_oauth_state", "missing or expired sign-in state", nil))
		return
	}
	clearOAuthStateCookie(c)

	if c.Query("state") != cookie.State {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_oauth_state", "state mismatch", nil))
		return
	}
	code := c.Query("code")
	if code == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing authorization code", nil))
		return
	}

	resp, err := h.authSvc.GoogleCallback(c.Request.Context(), code, cookie.CodeVerifier)
	if err != nil {
		abortWithError(c, authError(err, "google_callback_failed"))
		return
	}

	if h.postLoginRedirect != "" {
		// Tokens travel in the fragment so they never hit server logs.
		target := h.postLoginRedirect + "#token=" + url.QueryEscape(resp.Token) + "&refreshToken=" + url.QueryEscape(resp.RefreshToken)
		c.Redirect(http.StatusTemporaryRedirect, target)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func authError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "email_exists"):
		status = http.StatusConflict
		code = "email_exists"
	case apperrors.IsCode(err, "invalid_credentials"):
		status = http.StatusUnauthorized
		code = "invalid_credentials"
	case apperrors.IsCode(err, "invalid_token"):
		status = http.StatusUnauthorized
		code = "invalid_token"
	case apperrors.IsCode(err, "user_not_found"):
		status = http.StatusNotFound
		code = "user_not_found"
	case apperrors.IsCode(err, "auth_not_configured"):
		status = http.StatusServiceUnavailable
		code = "auth_not_configured"
	case apperrors.IsCode(err, "oauth_exchange_failed"):
		status = http.StatusBadGateway
		code = "oauth_exchange_failed"
	case apperrors.IsCode(err, "account_linking_disabled"):
		status = http.StatusConflict
		code = "account_linking_disabled"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}
