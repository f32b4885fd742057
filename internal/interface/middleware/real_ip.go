package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxRealIP = "real_ip"

// RealIP stores the originating client address under "real_ip":
// X-Real-IP, then the left-most X-Forwarded-For entry, then gin's ClientIP.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxRealIP, clientAddr(c))
		c.Next()
	}
}

func clientAddr(c *gin.Context) string {
	if ip := net.ParseIP(strings.TrimSpace(c.GetHeader("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
