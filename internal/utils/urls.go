package utils

import "strings"

// IsAbsoluteURL reports whether endpoint already names a scheme and host
func IsAbsoluteURL(endpoint string) bool {
	return strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
}

// ResolveURL joins a relative endpoint to baseURL. Absolute URLs are returned unchanged.
func ResolveURL(baseURL, endpoint string) string {
	if IsAbsoluteURL(endpoint) {
		return endpoint
	}
	if endpoint == "" {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
}
