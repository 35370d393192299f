// Command followercity grows an isometric city out of a follower roster.
package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/shainyguy/followercity/internal/config"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "followercity",
		Short:         "Isometric city that grows with your followers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults are embedded)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		lvl, err := cfg.Level()
		if err != nil {
			return nil, err
		}
		setupLogging(lvl)
		return cfg, nil
	}

	rootCmd.AddCommand(runCmd(load))
	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(snapshotCmd(load))
	rootCmd.AddCommand(rosterCmd(load))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("followercity failed", "error", err)
		os.Exit(1)
	}
}

// setupLogging installs a text handler on terminals and JSON otherwise.
func setupLogging(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
