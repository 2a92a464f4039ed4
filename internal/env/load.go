package env

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// Load reads a .env file from the working directory when one exists.
func Load() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}
}
