// internal/interfaces/http/handlers/user_address.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/user"
)

// UserAddressHandler handles the authenticated user's addresses
type UserAddressHandler struct {
	addressService *user.AddressService
	logger         *logrus.Logger
}

// NewUserAddressHandler creates a new user address handler
func NewUserAddressHandler(addressService *user.AddressService, logger *logrus.Logger) *UserAddressHandler {
	return &UserAddressHandler{
		addressService: addressService,
		logger:         logger,
	}
}

// GetAddresses handles GET /users/addresses
func (h *UserAddressHandler) GetAddresses(c *gin.Context) {
	addresses, err := h.addressService.ListAddresses(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

// AddAddress handles POST /users/addresses
func (h *UserAddressHandler) AddAddress(c *gin.Context) {
	var req user.AddressInput
	if !bindJSON(c, &req) {
		return
	}

	addresses, err := h.addressService.AddAddress(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, addresses)
}

// SetDefaultAddress handles PUT /users/addresses/:addressId/default
func (h *UserAddressHandler) SetDefaultAddress(c *gin.Context) {
	addressID, ok := paramID(c, "addressId", "Invalid address ID")
	if !ok {
		return
	}

	addresses, err := h.addressService.SetDefaultAddress(c.Request.Context(), currentUserID(c), addressID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}
