package pkg

import (
	"os"

	"github.com/rs/zerolog"
)

const LogLevelEnv = "NFT_STAKING_LOG_LEVEL"

// Getenv returns the value of key or defaultValue if key is not set.
// A key set to an empty string counts as set.
func Getenv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// LogLevel returns the global log level configured through the environment, info by default.
func LogLevel() (zerolog.Level, error) {
	return zerolog.ParseLevel(Getenv(LogLevelEnv, zerolog.InfoLevel.String()))
}
