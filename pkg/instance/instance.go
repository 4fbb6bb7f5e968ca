package instance

import "os"

// GetID identifies the running process in logs. Hosting platforms expose it
// under different names; the hostname is the last resort.
func GetID() string {
	for _, key := range []string{"DYNO", "RENDER_INSTANCE_ID", "INSTANCE_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
