package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gleipnir/internal/book"
	"gleipnir/internal/config"
	"gleipnir/internal/dispatch"
	"gleipnir/internal/net"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg := config.Load()

	orderBook, err := book.New(cfg.TickSize)
	if err != nil {
		log.Fatal().Err(err).Str("tick", cfg.TickSize).Msg("cannot build book")
	}

	// With no listen address configured, serve a single console session
	// instead of TCP.
	if cfg.ListenAddr == "" {
		if err := dispatch.New(orderBook).Run(os.Stdin, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("console session failed")
		}
		return
	}

	srv := net.New(cfg.ListenAddr, cfg.Port, orderBook)
	go srv.Run(ctx)
	// Block on running the server.
	<-ctx.Done()
}
