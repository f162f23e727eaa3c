package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/utils"
)

// Authenticator validates bearer tokens and resolves the caller identity.
type Authenticator struct {
	secret  []byte
	enabled bool
}

// NewAuthenticator creates a JWT authenticator. When disabled, the caller
// identity is taken from the X-User-ID header instead (local development and
// tests).
func NewAuthenticator(secret string, enabled bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), enabled: enabled}
}

// Identify resolves the caller identity when present, without requiring it.
// Unauthenticated requests proceed with no userID in context.
func (a *Authenticator) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := a.resolveUserID(c); err == nil && userID != "" {
			c.Set(constants.ContextKeyUserID, userID)
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid caller identity.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := a.resolveUserID(c)
		if err != nil {
			utils.SendError(c, serviceerror.CustomServiceError(serviceerror.UnauthorizedError, err.Error()))
			return
		}
		if userID == "" {
			utils.SendError(c, serviceerror.CustomServiceError(serviceerror.UnauthorizedError, "A bearer token is required"))
			return
		}
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func (a *Authenticator) resolveUserID(c *gin.Context) (string, error) {
	if !a.enabled {
		return c.GetHeader("X-User-ID"), nil
	}

	header := c.GetHeader(constants.AuthorizationHeaderName)
	if header == "" {
		return "", nil
	}
	rawToken, ok := strings.CutPrefix(header, constants.TokenTypeBearer+" ")
	if !ok {
		return "", fmt.Errorf("authorization header must use the Bearer scheme")
	}

	token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid bearer token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("bearer token has no subject")
	}
	return subject, nil
}
