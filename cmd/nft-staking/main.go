package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/nft-staking/cmd/nft-staking/cli"
	"github.com/babylonlabs-io/nft-staking/pkg"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
	// loggers taken from contexts without one fall back to the global logger
	zerolog.DefaultContextLogger = &log.Logger

	level, err := pkg.LogLevel()
	if err != nil {
		log.Warn().Err(err).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func main() {
	// setup and run cli commands
	if err := cli.Setup(); err != nil {
		os.Exit(1)
	}
}
