// Package config reads process configuration for the storefront API.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv merges a local .env file into the process environment. A missing
// file is not an error; deployed instances get their variables from the host.
func LoadEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, relying on process environment")
	}
}

// GetEnv returns the named variable, or fallback when it is unset.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
