package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/feelnote-core/pkg/response"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "user_id"

var errNoSubject = errors.New("token has no subject")

// Auth verifies a Supabase HS256 access token from the Authorization header
// and stores its subject as the acting user.
func Auth(secret, audience string) gin.HandlerFunc {
	key := []byte(secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "missing bearer token")
			return
		}
		userID, err := subject(parser, key, raw)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func subject(parser *jwt.Parser, key []byte, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errNoSubject
	}
	return claims.Subject, nil
}

// UserID returns the authenticated user id, or "" outside Auth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
