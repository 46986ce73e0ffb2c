package middleware

import (
	"github.com/gin-gonic/gin"
)

// InboundCookie is the raw Cookie header as the client sent it, forwarded verbatim to the identity service.
func InboundCookie(c *gin.Context) string {
	return c.GetHeader("Cookie")
}

func SetCookieHeaders(cookie string) map[string]string {
	if cookie == "" {
		return nil
	}
	return map[string]string{"Set-Cookie": cookie}
}
