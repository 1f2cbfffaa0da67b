// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/pkg/auth"
)

// UserProfileHandler handles the authenticated user's own profile
type UserProfileHandler struct {
	userService *user.Service
	jwtManager  *auth.JWTManager
	config      *config.Config
	logger      *logrus.Logger
}

// NewUserProfileHandler creates a new user profile handler
func NewUserProfileHandler(userService *user.Service, jwtManager *auth.JWTManager, cfg *config.Config, logger *logrus.Logger) *UserProfileHandler {
	return &UserProfileHandler{
		userService: userService,
		jwtManager:  jwtManager,
		config:      cfg,
		logger:      logger,
	}
}

// GetProfile handles GET /users/profile
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	u, err := h.userService.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(u))
}

// UpdateProfile handles PUT /users/profile
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	var req user.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.userService.UpdateProfile(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	auth.SetRefreshCookie(c, result.Tokens.RefreshToken, h.jwtManager.RefreshTTL(), h.config.IsProduction())

	resp := profileResponse(result.User)
	resp["token"] = result.Tokens.AccessToken
	c.JSON(http.StatusOK, resp)
}

// DeleteProfile handles DELETE /users/profile
func (h *UserProfileHandler) DeleteProfile(c *gin.Context) {
	if err := h.userService.DeleteProfile(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	auth.ClearRefreshCookie(c, h.config.IsProduction())
	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}

func profileResponse(u *user.User) gin.H {
	addresses := u.Addresses
	if addresses == nil {
		addresses = []user.Address{}
	}
	return gin.H{
		"_id":       u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"phone":     u.Phone,
		"addresses": addresses,
	}
}
