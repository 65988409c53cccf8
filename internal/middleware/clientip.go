package middleware

import (
	"net"
	"net/http"
	"strings"
)

var proxyIPHeaders = []string{"X-Real-IP", "Proxy-Client-IP", "WL-Proxy-Client-IP"}

// ClientIP returns the originating address, preferring proxy headers over the
// socket peer. Proxies that cannot resolve the client send "unknown".
func ClientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		for _, part := range strings.Split(forwarded, ",") {
			if ip := strings.TrimSpace(part); usableIP(ip) {
				return ip
			}
		}
	}

	for _, header := range proxyIPHeaders {
		if ip := strings.TrimSpace(r.Header.Get(header)); usableIP(ip) {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}

	return r.RemoteAddr
}

func usableIP(ip string) bool {
	return ip != "" && !strings.EqualFold(ip, "unknown")
}
