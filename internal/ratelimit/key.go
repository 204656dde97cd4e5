package ratelimit

import "strings"

// KeyForClient builds a limiter key for a scope and client address.
func KeyForClient(scope Scope, clientIP string) string {
	clientIP = strings.TrimSpace(clientIP)
	if scope == "" || clientIP == "" {
		return ""
	}
	return string(scope) + ":" + clientIP
}
