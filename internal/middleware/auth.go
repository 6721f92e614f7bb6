package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"civicreport/internal/models"
	"civicreport/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Capability is the access level a route requires.
type Capability int

const (
	Authenticated Capability = iota
	Admin
)

const currentUserKey = "currentUser"

// TokenVerifier is satisfied by *service.TokenService.
type TokenVerifier interface {
	Verify(token string) (*models.Claims, error)
}

// UserLookup is satisfied by repository.UserRepository.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Authenticator verifies bearer tokens and resolves the calling user.
type Authenticator struct {
	tokens TokenVerifier
	users  UserLookup
	logger *zap.Logger
}

func NewAuthenticator(tokens TokenVerifier, users UserLookup, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// Require creates a Gin middleware that verifies the token once, loads the user
// and, for Admin, checks the role before calling the next handler.
func (a *Authenticator) Require(level Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Token missing")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		claims, err := a.tokens.Verify(parts[1])
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				abort(c, http.StatusUnauthorized, "Token expired")
				return
			}
			a.logger.Debug("Invalid JWT token", zap.Error(err))
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		user, err := a.users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			a.logger.Error("Failed to resolve token user", zap.Int64("user_id", claims.UserID), zap.Error(err))
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			abort(c, http.StatusUnauthorized, "Invalid user")
			return
		}

		if level == Admin && !user.IsAdmin() {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Require, or nil on an ungated route.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
