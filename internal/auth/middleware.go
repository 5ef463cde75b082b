package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var middlewareTracer = otel.Tracer("doc-orchestrator/auth-middleware")

// Gin context keys set by the middleware
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRoles    = "user_roles"
)

// Middleware provides gin middleware for JWT authentication
type Middleware struct {
	jwtManager *JWTManager
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(jwtManager *JWTManager) *Middleware {
	return &Middleware{jwtManager: jwtManager}
}

// RequireAuth validates the bearer token and attaches the user identity to
// the gin context. Requests without a valid token are rejected.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := middlewareTracer.Start(c.Request.Context(), "auth.require_auth")
		defer span.End()

		token := extractBearerToken(c.Request)
		if token == "" {
			span.SetAttributes(attribute.Bool("auth.token_present", false))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			return
		}

		claims, err := m.jwtManager.ValidateToken(ctx, token)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("auth.token_valid", false))
			log.Printf(`{"level":"warn","message":"Invalid token","error":"%v"}`, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		span.SetAttributes(
			attribute.Bool("auth.token_valid", true),
			attribute.String("user.id", claims.UserID),
		)

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRoles, claims.Roles)
		c.Next()
	}
}

// OptionalAuth attaches the user identity when a valid token is present but
// lets anonymous requests through. Public project reads use it.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := middlewareTracer.Start(c.Request.Context(), "auth.optional_auth")
		defer span.End()

		token := extractBearerToken(c.Request)
		if token == "" {
			span.SetAttributes(attribute.Bool("auth.authenticated", false))
			c.Next()
			return
		}

		claims, err := m.jwtManager.ValidateToken(ctx, token)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("auth.authenticated", false))
			c.Next()
			return
		}

		span.SetAttributes(
			attribute.Bool("auth.authenticated", true),
			attribute.String("user.id", claims.UserID),
		)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRoles, claims.Roles)
		c.Next()
	}
}

// RequireRole rejects authenticated users lacking the given role. Must run
// after RequireAuth.
func (m *Middleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := middlewareTracer.Start(c.Request.Context(), "auth.require_role")
		defer span.End()
		span.SetAttributes(attribute.String("required.role", role))

		roles, ok := c.Get(ContextRoles)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User roles not found"})
			return
		}
		for _, userRole := range roles.([]string) {
			if userRole == role {
				span.SetAttributes(attribute.Bool("auth.role_authorized", true))
				c.Next()
				return
			}
		}

		userID, _ := c.Get(ContextUserID)
		span.SetAttributes(attribute.Bool("auth.role_authorized", false))
		log.Printf(`{"level":"warn","message":"Insufficient permissions","user_id":"%v","required_role":"%s"}`,
			userID, role)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(prefix):])
}
