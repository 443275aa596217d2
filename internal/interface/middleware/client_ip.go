package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ConfigureClientIP limits which peers may set the client IP through forwarding headers.
// With no proxies and no platform, c.ClientIP() is the TCP peer address.
// platform "cloudflare" reads CF-Connecting-IP, "appengine" reads X-Appengine-Remote-Addr.
func ConfigureClientIP(r *gin.Engine, proxies []string, platform string) error {
	if err := r.SetTrustedProxies(proxies); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "cloudflare":
		r.TrustedPlatform = gin.PlatformCloudflare
	case "appengine":
		r.TrustedPlatform = gin.PlatformGoogleAppEngine
	default:
		r.TrustedPlatform = ""
	}
	return nil
}
