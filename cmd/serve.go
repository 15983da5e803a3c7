package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zenload/zenload/internal/api"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default from config)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	addr := cfg.ListenAddr
	if flagListen != "" {
		addr = flagListen
	}

	// Warm the engine up front so the first fetch does not pay the
	// install-check latency.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.gate.Ensure(ctx)

	server := api.NewServer(addr, app.service, app.gate)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	log.Printf("listening on %s", server.Addr())

	<-ctx.Done()
	log.Printf("shutting down")
	return server.Stop()
}
