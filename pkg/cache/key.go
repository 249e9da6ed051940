package cache

import (
	"net/url"
	"strings"
)

// Key identifies the cached token of one user on one portal.
type Key struct {
	// Portal is the portal base URL (e.g., "https://host/portal/")
	Portal string

	// Username is the portal account name
	Username string
}

// String generates a deterministic cache key string.
// Format: arcgis:token:host/path:username
//
// Example:
//
//	arcgis:token:sigabpre.example.org/portal:editor
func (k Key) String() string {
	portal := strings.TrimSpace(k.Portal)
	if u, err := url.Parse(portal); err == nil && u.Host != "" {
		portal = strings.ToLower(u.Host) + u.Path
	}
	portal = strings.Trim(portal, "/")

	return strings.Join([]string{"arcgis", "token", portal, k.Username}, ":")
}
