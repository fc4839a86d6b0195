package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl lets the caller's browser reuse a response for maxAge.
// The response varies with the identity header, so shared caches must not
// store it.
func CacheControl(maxAge time.Duration) gin.HandlerFunc {
	value := "private, max-age=" + strconv.Itoa(int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Writer.Header().Add("Vary", HeaderAuthentication)
		c.Next()
	}
}
