package instance

import (
	"os"
	"strings"
)

// GetID identifies this process in logs and lock tokens: STOREFRONT_INSTANCE_ID,
// then DYNO, then the hostname, then "local".
func GetID() string {
	for _, key := range []string{"STOREFRONT_INSTANCE_ID", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
