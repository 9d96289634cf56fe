// Package env holds the few raw environment lookups that run before the
// typed config is loaded. It must stay dependency-free so the logger can
// use it without importing config.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
