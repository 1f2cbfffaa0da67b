// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"github.com/your-org/storefront-api/internal/pkg/auth"
)

// AuthHandler handles registration, login and the refresh cookie
type AuthHandler struct {
	userService *user.Service
	jwtManager  *auth.JWTManager
	config      *config.Config
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *user.Service, jwtManager *auth.JWTManager, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtManager,
		config:      cfg,
		logger:      logger,
	}
}

// Register handles POST /users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	c.JSON(http.StatusCreated, authResponse(result))
}

// Login handles POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	c.JSON(http.StatusOK, authResponse(result))
}

// RefreshToken handles POST /users/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := c.Cookie(auth.RefreshCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No refresh token"})
		return
	}

	result, err := h.userService.Refresh(c.Request.Context(), token)
	if err != nil {
		if kind := apperr.KindOf(err); kind == apperr.KindForbidden || kind == apperr.KindUnauthorized {
			auth.ClearRefreshCookie(c, h.config.IsProduction())
		}
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"token": result.Tokens.AccessToken})
}

// Logout handles POST /users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(auth.RefreshCookieName); err == nil {
		h.userService.Logout(c.Request.Context(), token)
	}
	auth.ClearRefreshCookie(c, h.config.IsProduction())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	auth.SetRefreshCookie(c, token, h.jwtManager.RefreshTTL(), h.config.IsProduction())
}

func authResponse(result *user.AuthResult) gin.H {
	return gin.H{
		"_id":   result.User.ID,
		"name":  result.User.Name,
		"email": result.User.Email,
		"phone": result.User.Phone,
		"token": result.Tokens.AccessToken,
	}
}
