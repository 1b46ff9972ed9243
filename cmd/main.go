package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"factorypulse/internal/app"
	"factorypulse/internal/config"
	"factorypulse/internal/console"
	"factorypulse/internal/web"
)

var rootCmd = &cobra.Command{
	Use:           "factorypulse",
	Short:         "Manufacturing operations dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard server and the configured live sources",
	RunE:  runServe,
}

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render every page to static HTML",
	RunE:  runExport,
}

var statusWidth int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the equipment status table",
	RunE:  runStatus,
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// --- Graceful shutdown ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Serve(ctx, cfg, logger)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := app.LoadSnapshot(cfg)
	if err != nil {
		return err
	}
	r, err := web.NewRenderer(snap.Site, web.WSPath)
	if err != nil {
		return err
	}

	written, err := web.ExportSite(exportDir, r, snap, time.Now())
	if err != nil {
		return err
	}
	for _, rel := range written {
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(exportDir, rel))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := app.LoadSnapshot(cfg)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), console.RenderStatusTable(snap, statusWidth))
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "site", "output directory")
	statusCmd.Flags().IntVar(&statusWidth, "width", 0, "cut lines to this many columns (0 = no limit)")
	rootCmd.AddCommand(serveCmd, exportCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
