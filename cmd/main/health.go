package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"furnistor/storefront/internal/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend API answers",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().String("site", "", "Public site url used to pick the backend, e.g. http://localhost:5500")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	baseURL := cfg.Backend.ResolveAPIBaseURL(cfg.Server.Host, cfg.Server.Port)
	if site, _ := cmd.Flags().GetString("site"); site != "" {
		baseURL = cfg.Backend.ResolveForPublicURL(site)
	}

	backend := client.NewBackendClient(cfg.Backend, baseURL)
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := backend.Health(ctx); err != nil {
		return fmt.Errorf("backend %s is unhealthy: %w", baseURL, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ backend %s is healthy\n", baseURL)
	return nil
}
