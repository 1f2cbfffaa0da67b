// internal/pkg/auth/cookie.go
package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RefreshCookieName is the cookie carrying the refresh token
const RefreshCookieName = "refreshToken"

// SetRefreshCookie writes the refresh token as an HttpOnly, SameSite=Strict
// cookie. Secure is only set in production so local http clients still work.
func SetRefreshCookie(c *gin.Context, token string, maxAge time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, token, int(maxAge/time.Second), "/", "", secure, true)
}

// ClearRefreshCookie expires the refresh cookie on the client
func ClearRefreshCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, "", -1, "/", "", secure, true)
}
