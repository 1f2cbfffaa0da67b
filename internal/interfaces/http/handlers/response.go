// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
)

const serverErrorMessage = "Server error"

// respondError translates a service error into a status and {message}.
// Unclassified errors are logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.FullPath(),
		}).Error("Request failed")
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"message": apperr.MessageOf(err, serverErrorMessage)})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// bindJSON decodes the body and answers 400 on malformed JSON
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid request data")
		return false
	}
	return true
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name, message string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, message)
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the id the auth guard attached. Routes using it are
// always behind the guard.
func currentUserID(c *gin.Context) uint {
	id, _ := middleware.GetUserIDFromContext(c)
	return id
}
