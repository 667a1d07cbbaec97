package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"furnistor/storefront/internal/container"

	log "github.com/sirupsen/logrus"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		cfg.Server.Port = p
	}

	log.Info("Starting Furnistør storefront...")

	app, err := container.New(cfg, cfg.Backend.ResolveAPIBaseURL(cfg.Server.Host, cfg.Server.Port))
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		return err
	}

	log.Info("Storefront stopped")
	return nil
}
