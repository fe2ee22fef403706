// Package env reads process environment variables that sit outside the
// validated config struct, such as LOG_FORMAT for the bootstrap logger.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
