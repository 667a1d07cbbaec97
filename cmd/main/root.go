package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"furnistor/storefront/internal/config"

	log "github.com/sirupsen/logrus"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Furnistør storefront - server-side page renderer and admin forms",
	Long:  "Serves the Furnistør theme templates patched with live catalog data and hosts the category admin forms.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

func initConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")

	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = loaded

	level := cfg.Log.Level
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)

	log.Debug("Configuration loaded successfully")
	return nil
}
