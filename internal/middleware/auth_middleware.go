package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
	ClaimsKey    = "claims"
)

const invalidTokenMessage = "Invalid or expired token"

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	tokens      *util.TokenService
	revocations RevocationChecker
}

// NewAuthMiddleware builds the auth guard. revocations may be nil.
func NewAuthMiddleware(tokens *util.TokenService, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:      tokens,
		revocations: revocations,
	}
}

type tokenState int

const (
	tokenMissing tokenState = iota
	tokenMalformed
	tokenPresent
)

// bearerToken splits the Authorization header. "Bearer" with nothing after it
// counts as missing; any other scheme counts as malformed.
func bearerToken(header string) (string, tokenState) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", tokenMissing
	}
	scheme, token, _ := strings.Cut(header, " ")
	if scheme != "Bearer" {
		return "", tokenMalformed
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", tokenMissing
	}
	return token, tokenPresent
}

// verify returns the claims for token, or false after answering the request.
func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.Claims, bool) {
	log := GetLoggerFromContext(c)

	claims, err := m.tokens.Verify(token)
	if err != nil {
		log.Warn("Token validation failed", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		errors.Forbidden(c, errors.AuthTokenInvalid, invalidTokenMessage)
		return nil, false
	}

	if m.revocations != nil && claims.ID != "" {
		revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("Failed to check token revocation", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			errors.InternalError(c, "")
			c.Abort()
			return nil, false
		}
		if revoked {
			log.Warn("Revoked token presented", map[string]interface{}{
				"user_id": claims.UserID,
				"path":    c.Request.URL.Path,
			})
			errors.Forbidden(c, errors.AuthTokenInvalid, invalidTokenMessage)
			return nil, false
		}
	}

	return claims, true
}

func setIdentity(c *gin.Context, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(ClaimsKey, claims)
}

// Authenticate requires a valid bearer token.
// Missing token answers 401; an invalid, expired or revoked one answers 403.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c, c.GetHeader("Authorization"))
	}
}

// AuthenticateWebSocket also accepts the token as ?token=, since browsers
// cannot set headers on websocket upgrades.
func (m *AuthMiddleware) AuthenticateWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if token := c.Query("token"); token != "" {
				GetLoggerFromContext(c).Debug("Using token from query parameter", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				header = "Bearer " + token
			}
		}
		m.authenticate(c, header)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, header string) {
	log := GetLoggerFromContext(c)

	token, state := bearerToken(header)
	switch state {
	case tokenMissing:
		log.Warn("Missing authorization header", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		errors.Unauthorized(c, "Access token required")
		return
	case tokenMalformed:
		log.Warn("Invalid authorization header format", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		errors.Forbidden(c, errors.AuthTokenInvalid, invalidTokenMessage)
		return
	}

	claims, ok := m.verify(c, token)
	if !ok {
		return
	}
	setIdentity(c, claims)

	log.Debug("User authenticated successfully", map[string]interface{}{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})

	c.Next()
}

// OptionalAuthenticate attaches identity when a valid token is present and
// otherwise continues as a guest.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, state := bearerToken(c.GetHeader("Authorization"))
		if state != tokenPresent {
			log.Debug("No usable authorization header - continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}
		if m.revocations != nil && claims.ID != "" {
			if revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID); err != nil || revoked {
				log.Debug("Token revoked or unverifiable - continuing as guest", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				c.Next()
				return
			}
		}

		setIdentity(c, claims)
		log.Debug("User authenticated successfully (optional)", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// RequireRole checks if user has one of the allowed roles
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Forbidden(c, errors.AuthzForbidden, "Access denied")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, errors.AuthzForbidden, "Access denied")
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.UserRole)
	return r, ok
}

// GetClaims returns the verified token claims, used by logout.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	cl, ok := claims.(*util.Claims)
	return cl, ok
}
