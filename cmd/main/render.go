package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"furnistor/storefront/internal/container"
)

var renderCmd = &cobra.Command{
	Use:   "render [url]",
	Short: "Render a storefront page and print its HTML",
	Long:  "Renders the page a browser would get at url, e.g. http://localhost:5500/product/oak-chair. The backend is chosen from the url's host and port.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().Duration("timeout", time.Minute, "Give up after this long")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	pageURL := args[0]
	timeout, _ := cmd.Flags().GetDuration("timeout")

	app, err := container.New(cfg, cfg.Backend.ResolveForPublicURL(pageURL))
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := app.RenderPage(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
