package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shainyguy/followercity/internal/api"
	"github.com/shainyguy/followercity/internal/display"
	"github.com/shainyguy/followercity/internal/engine"
	"github.com/shainyguy/followercity/internal/render/raster"
)

func runCmd(load loadFunc) *cobra.Command {
	var rosterPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the city in a window",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := newCity(ctx, cfg, rosterPath, cfg.Window.Width, cfg.Window.Height)
			if err != nil {
				return err
			}
			defer c.Close()
			c.start(ctx)

			// The window drives the engine one frame per tick.
			g := display.NewGame(ctx, c.eng, c.face)
			return display.Run(g, cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		},
	}

	cmd.Flags().StringVarP(&rosterPath, "roster", "r", "", "follower roster file (YAML or JSON)")
	return cmd
}

func serveCmd(load loadFunc) *cobra.Command {
	var (
		rosterPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the city headless behind the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cfg.Server.AdminKey == "" {
				slog.Warn("FOLLOWERCITY_ADMIN_KEY not set, admin POST endpoints will be disabled")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := newCity(ctx, cfg, rosterPath, cfg.Server.SnapshotWidth, cfg.Server.SnapshotHeight)
			if err != nil {
				return err
			}
			defer c.Close()
			c.start(ctx)

			srv := &api.Server{
				Sim:      c.sim,
				Eng:      c.eng,
				Face:     c.face,
				Port:     cfg.Server.Port,
				AdminKey: cfg.Server.AdminKey,
				RelayKey: os.Getenv("FOLLOWERCITY_RELAY_KEY"),

				SnapshotsPerMinute: cfg.Server.SnapshotsPerMinute,
			}
			srv.Start()

			fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)
			fmt.Println("Starting city... (Ctrl+C to stop)")

			c.eng.Run(ctx)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("HTTP shutdown", "error", err)
			}
			slog.Info("city stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&rosterPath, "roster", "r", "", "follower roster file (YAML or JSON)")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP server port")
	return cmd
}

func snapshotCmd(load loadFunc) *cobra.Command {
	var (
		rosterPath string
		out        string
		frames     int
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the city to a PNG file",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if frames < 0 {
				return fmt.Errorf("frames must be >= 0, got %d", frames)
			}

			ctx := context.Background()
			c, err := newCity(ctx, cfg, rosterPath, cfg.Server.SnapshotWidth, cfg.Server.SnapshotHeight)
			if err != nil {
				return err
			}
			defer c.Close()

			c.eng.Advance(frames)

			surf, err := raster.New(cfg.Server.SnapshotWidth, cfg.Server.SnapshotHeight, c.face)
			if err != nil {
				return err
			}
			c.eng.Do(func(sim *engine.Simulation) { err = sim.Render(surf) })
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := surf.EncodePNG(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			slog.Info("snapshot written", "path", out, "frames", frames)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rosterPath, "roster", "r", "", "follower roster file (YAML or JSON)")
	cmd.Flags().StringVarP(&out, "out", "o", "city.png", "output PNG path")
	cmd.Flags().IntVarP(&frames, "frames", "n", 120, "frames to simulate before rendering")
	return cmd
}
