// Command lobd runs the matching engine behind a TCP listener.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"lobengine/internal/config"
	"lobengine/internal/core/engine"
	"lobengine/internal/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	eng := engine.New()
	srv := transport.New(config.Default(), eng)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("server exited with error")
		}
	}()

	<-ctx.Done()
	srv.Shutdown()
}
