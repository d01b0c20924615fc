// Package config provides configuration helpers for voiceorder commands.
package config

import (
	"fmt"
	"os"
)

// Default server configuration.
const (
	DefaultPort     = "3000"
	DefaultLogLevel = "info"
)

// OpenAIKeyRequired returns the OpenAI API key from OPENAI_API_KEY.
// Exits the process if not set: the service cannot mint realtime
// sessions without it.
func OpenAIKeyRequired() string {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		fmt.Fprintln(os.Stderr, "Error: OPENAI_API_KEY environment variable is required")
		fmt.Fprintln(os.Stderr, "Usage: OPENAI_API_KEY=sk-... go run ./cmd/server")
		os.Exit(1)
	}
	return key
}

// Port returns the HTTP port from PORT env var.
// Falls back to the provided default if not set.
func Port(defaultPort string) string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return defaultPort
}

// LogLevel returns the log level from LOG_LEVEL env var or default.
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}

// MenuPath returns the path to a menu catalog JSON file from MENU_PATH.
// Empty means the compiled-in catalog is used.
func MenuPath() string {
	return os.Getenv("MENU_PATH")
}
