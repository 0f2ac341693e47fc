package instance

import "os"

// ID identifies the running replica in logs. It prefers an explicit
// STOREFRONT_INSTANCE_ID, then the platform-provided revision or dyno name,
// then the hostname.
func ID() string {
	for _, key := range []string{"STOREFRONT_INSTANCE_ID", "K_REVISION", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
