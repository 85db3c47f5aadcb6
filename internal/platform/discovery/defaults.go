// Package discovery centralizes local service-address conventions.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceCharstore is the character document store identity.
	ServiceCharstore = "charstore"
)

// DefaultHost is where commands look for sibling services.
const DefaultHost = "localhost"

var httpPorts = map[string]int{
	ServiceCharstore: 8095,
}

// DefaultHTTPAddr returns the conventional HTTP address for a service.
func DefaultHTTPAddr(service string) string {
	port, ok := httpPorts[strings.TrimSpace(service)]
	if !ok || port <= 0 {
		return ""
	}
	return DefaultHost + ":" + strconv.Itoa(port)
}

// OrDefaultHTTPAddr returns value when set, otherwise the service convention.
func OrDefaultHTTPAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultHTTPAddr(service)
}

// OrDefaultHTTPURL returns value when set, otherwise
// http://<host:port><path> for the service.
func OrDefaultHTTPURL(value, service, path string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	addr := DefaultHTTPAddr(service)
	if addr == "" {
		return ""
	}
	return "http://" + addr + path
}
