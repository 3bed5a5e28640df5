package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/api/models"
	"libraryhub/internal/api/service"
)

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a JWT token in the
// Authorization header and stores the verified claims in the context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// Set user info in context for handlers to use
		c.Set("claims", claims)
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireStaff guards routes that only library staff may call.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != models.RoleStaff {
			c.JSON(http.StatusForbidden, gin.H{"error": "staff role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFromContext rebuilds the service-layer actor from verified claims.
// The boolean is false when the request never passed AuthMiddleware.
func ActorFromContext(c *gin.Context) (service.Actor, bool) {
	value, exists := c.Get("claims")
	if !exists {
		return service.Actor{}, false
	}
	claims, ok := value.(*service.Claims)
	if !ok {
		return service.Actor{}, false
	}
	return claims.Actor(), true
}
