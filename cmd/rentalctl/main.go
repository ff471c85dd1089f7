package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/go-rental-session/internal/cli"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		log.Debug().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
