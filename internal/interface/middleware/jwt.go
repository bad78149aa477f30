package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
)

// OptionalAuth identifies the viewer when a valid session is presented and
// lets anonymous requests through unchanged.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := accessToken(c); token != "" {
			if claims, err := jwt.ParseAccessToken(token); err == nil && sessionActive(c, rdb, claims) {
				c.Set(CtxUserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}
