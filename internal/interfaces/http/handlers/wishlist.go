// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/user"
)

// WishlistHandler handles the authenticated user's wishlist
type WishlistHandler struct {
	wishlistService *user.WishlistService
	logger          *logrus.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *user.WishlistService, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// GetWishlist handles GET /users/wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	items, err := h.wishlistService.GetWishlist(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddToWishlist handles POST /users/wishlist
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	var req user.AddToWishlistRequest
	if !bindJSON(c, &req) {
		return
	}

	items, err := h.wishlistService.AddToWishlist(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// RemoveFromWishlist handles DELETE /users/wishlist/:productId
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	productID, ok := paramID(c, "productId", "Invalid product ID")
	if !ok {
		return
	}

	items, err := h.wishlistService.RemoveFromWishlist(c.Request.Context(), currentUserID(c), productID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
