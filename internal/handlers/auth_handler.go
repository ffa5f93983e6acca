package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
	"github.com/sidharth07/verbiforge-sub000/internal/responses"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
)

// Cookie configuration
const (
	RefreshTokenCookieName = "refresh_token"
	refreshCookiePath      = "/api/v1/auth"
)

type AuthHandler struct {
	authService *services.AuthService
	refreshTTL  int
	log         *slog.Logger
}

func NewAuthHandler(authService *services.AuthService, refreshTTLSeconds int, log *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, refreshTTL: refreshTTLSeconds, log: log}
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Please provide your email and password correctly")
		return
	}
	// role and license are never self-assigned
	req.Role, req.License = "", ""

	session, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, h.log, err, "Could not register user")
		return
	}
	h.setRefreshCookie(c, session.Tokens.RefreshToken)
	responses.Success(c, http.StatusCreated, session, "New user registered successfully!")
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"    binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid Format")
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		responses.Error(c, h.log, err, "Failed to login")
		return
	}
	h.setRefreshCookie(c, session.Tokens.RefreshToken)
	responses.Success(c, http.StatusOK, session, "User Login Successfully!")
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token comes from the
// HttpOnly cookie, or from the JSON body for non-browser clients.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := h.refreshToken(c)
	if refreshToken == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "Missing refresh token")
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.clearRefreshCookie(c)
		responses.Error(c, h.log, err, "Could not refresh session")
		return
	}
	h.setRefreshCookie(c, session.Tokens.RefreshToken)
	responses.Success(c, http.StatusOK, session, "Token refreshed")
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.authService.Logout(c.Request.Context(), middlewares.AccessTokenFrom(c), h.refreshToken(c))
	if err != nil {
		responses.Error(c, h.log, err, "Could not revoke token")
		return
	}
	h.clearRefreshCookie(c)
	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}

func (h *AuthHandler) refreshToken(c *gin.Context) string {
	if token, err := c.Cookie(RefreshTokenCookieName); err == nil && token != "" {
		return token
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&body)
	}
	return body.RefreshToken
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshTokenCookieName, token, h.refreshTTL, refreshCookiePath, "", true, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(RefreshTokenCookieName, "", -1, refreshCookiePath, "", true, true)
}
