package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ahmedaminrashad/horizon-sub000/pkg/auth"
)

const (
	ContextUserID     = "user_id"
	ContextUserEmail  = "user_email"
	ContextUserClinic = "user_clinic_id"
)

type AuthMiddleware struct {
	tokens *auth.TokenService
}

func NewAuthMiddleware(tokens *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and sets the user identity
// in the gin context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"status": "error", "message": "missing authorization header"})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"status": "error", "message": "invalid authorization format"})
			return
		}

		claims, err := m.tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"status": "error", "message": "invalid token"})
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserClinic, claims.ClinicID)
		c.Next()
	}
}

// RequireClinic rejects tokens scoped to a different clinic than the
// one the request was routed to. Tokens without a clinic claim are
// platform staff and pass everywhere.
func (m *AuthMiddleware) RequireClinic() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenClinic := c.GetString(ContextUserClinic)
		routedClinic := c.GetString(ContextClinicID)
		if tokenClinic != "" && routedClinic != "" && tokenClinic != routedClinic {
			c.AbortWithStatusJSON(http.StatusForbidden,
				gin.H{"status": "error", "message": "token is not valid for this clinic"})
			return
		}
		c.Next()
	}
}
