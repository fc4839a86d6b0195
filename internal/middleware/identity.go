package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/gscribe-backend/internal/response"
)

const (
	// ContextKeyUserID is the Gin context key for the verified user id.
	ContextKeyUserID = "user_id"

	// HeaderAuthentication carries the raw identity token.
	HeaderAuthentication = "Authentication"
)

// IdentityVerifier resolves an identity token to the user it was issued to.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// RequireIdentity verifies the identity token on the request and stores the
// user id in the context. Each audience gets its own verifier.
func RequireIdentity(verifier IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractIdentityToken(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		userID, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrIdentityInvalid)
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the verified user id from the Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

func extractIdentityToken(c *gin.Context) string {
	if tok := strings.TrimSpace(c.GetHeader(HeaderAuthentication)); tok != "" {
		return tok
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
