package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config carries everything the process reads from the environment. A
// .env file in the working directory is folded in first, if present.
type Config struct {
	// TickSize is the minimum price increment, as decimal text. Fixed for
	// the lifetime of the book.
	TickSize string
	// ListenAddr is the TCP bind address. Empty means serve the command
	// protocol over stdin/stdout instead.
	ListenAddr string
	Port       int
}

const (
	defaultTickSize = "0.000001"
	defaultPort     = 9001
)

func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("ignoring unreadable .env file")
	}

	cfg := Config{
		TickSize:   defaultTickSize,
		ListenAddr: os.Getenv("GLEIPNIR_LISTEN_ADDR"),
		Port:       defaultPort,
	}
	if tick := os.Getenv("GLEIPNIR_TICK_SIZE"); tick != "" {
		cfg.TickSize = tick
	}
	if port := os.Getenv("GLEIPNIR_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			log.Warn().Str("port", port).Msg("bad port, using default")
			n = defaultPort
		}
		cfg.Port = n
	}
	return cfg
}
