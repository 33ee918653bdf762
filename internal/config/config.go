// Package config reads configuration from the environment. The
// composition roots load .env first via godotenv.
package config

import "os"

// Get returns the value of key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
