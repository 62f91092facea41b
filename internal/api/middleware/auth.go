package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	PlayerID string `json:"player_id"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// OptionalAuth sets player_id from a valid bearer token and lets anonymous
// requests through untouched.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.Next()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err == nil && token.Valid {
			if claims, ok := token.Claims.(*Claims); ok && claims.PlayerID != "" {
				c.Set("player_id", claims.PlayerID)
				c.Set("email", claims.Email)
				c.Set("authenticated", true)
			}
		}

		c.Next()
	}
}

// AuthenticatedPlayer returns the player carried by the request token.
func AuthenticatedPlayer(c *gin.Context) (string, bool) {
	if !c.GetBool("authenticated") {
		return "", false
	}
	playerID := c.GetString("player_id")
	return playerID, playerID != ""
}
