package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
	"github.com/meremyd/campus-election-api/pkg/response"
)

// ContextUserKey is the gin context key storing verified claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid access token issued by the
// campus identity provider. Tokens are only verified here, never issued.
func JWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := parseToken(parts[1], secret)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// Claims returns the verified claims stored in the gin context, or nil.
func Claims(c *gin.Context) *models.VoterClaims {
	if v, exists := c.Get(ContextUserKey); exists {
		if claims, ok := v.(*models.VoterClaims); ok {
			return claims
		}
	}
	return nil
}

func parseToken(tokenString, secret string) (*models.VoterClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.VoterClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.VoterClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}
