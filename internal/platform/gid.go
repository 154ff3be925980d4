package platform

import (
	"fmt"
	"strings"
)

// GID turns a numeric id into the platform's global id form. Values that
// already are global ids are returned unchanged.
func GID(kind, id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return fmt.Sprintf("gid://shopify/%s/%s", kind, id)
}

// LegacyID returns the trailing numeric segment of a global id.
func LegacyID(gid string) string {
	gid = strings.TrimSpace(gid)
	if i := strings.LastIndex(gid, "/"); i >= 0 {
		gid = gid[i+1:]
	}
	if i := strings.Index(gid, "?"); i >= 0 {
		gid = gid[:i]
	}
	return gid
}
