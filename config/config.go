// Package config loads environment configuration for the simulation node.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env and warns about optional variables that are unset. The
// node runs fine without credentials; workflow generation then uses the
// built-in mock generator.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set, using mock workflow generation")
	}
}

// OpenAIKey returns the OpenAI API key, empty when unset.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// DataDir returns the node data directory.
func DataDir() string {
	if dir := os.Getenv("NEXUS_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}
