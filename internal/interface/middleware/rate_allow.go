package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-realestate-listings/pkg/response"
)

func isPrivate(c *gin.Context) bool {
	ip := net.ParseIP(ipFromCtx(c))
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}

// AllowPrivateIP exempts loopback and private-range clients from rate limits.
func AllowPrivateIP() AllowFunc {
	return isPrivate
}

// PrivateOnly rejects requests from public addresses with 404.
func PrivateOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isPrivate(c) {
			response.Abort(c, http.StatusNotFound, "not found", nil)
			return
		}
		c.Next()
	}
}
