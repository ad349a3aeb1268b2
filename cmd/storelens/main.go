package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/cli"
)

func main() {
	// Cancel the command context on interrupt so servers and bulk runs stop cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
	}()

	cli.Execute(ctx)
}
