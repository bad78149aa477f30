package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client IP under "real_ip". Proxy headers
// (CF-Connecting-IP, then the left-most X-Forwarded-For) are only honoured
// when trustProxy is set.
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if trustProxy {
			if h := forwardedIP(c); h != "" {
				ip = h
			}
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func forwardedIP(c *gin.Context) string {
	if cf := net.ParseIP(strings.TrimSpace(c.GetHeader("CF-Connecting-IP"))); cf != nil {
		return cf.String()
	}
	first, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
