package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryanchriswhite/FocusVibrance/internal/api"
	"github.com/bryanchriswhite/FocusVibrance/internal/config"
	"github.com/bryanchriswhite/FocusVibrance/internal/dbus"
	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
	"github.com/bryanchriswhite/FocusVibrance/internal/logger"
	"github.com/bryanchriswhite/FocusVibrance/internal/wayland"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply vibrance to matching focused windows",
	Long: `Connect to Hyprland and watch window focus. While the focused window's
title exactly matches one of the title filters, every display showing it
gets the saturation transform. Original colours are restored on exit.`,
	Example: `  # Use the title filters from the config file
  focusvibrance run

  # Boost a single game with a custom saturation
  focusvibrance run --title-match "Cyberpunk 2077" --sat-level 2.5

  # Expose read-only status over HTTP and the session bus
  focusvibrance run --status-port 8090 --dbus

  # Log what would happen without touching any display
  focusvibrance run --dry-run --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runDryRun bool

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64("sat-level", config.DefaultSaturation, "saturation applied to matching windows (0 to 4)")
	runCmd.Flags().StringArray("title-match", nil, "exact window title to boost (repeatable, replaces configured filters)")
	runCmd.Flags().Int("status-port", 0, "serve read-only status on this port (0 disables)")
	runCmd.Flags().String("wayland-display", "", "Wayland display name or socket path (default $WAYLAND_DISPLAY)")
	runCmd.Flags().Bool("dbus", false, "publish status on the session bus")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "track focus and log decisions without changing colours")

	viper.BindPFlag(config.KeySaturation, runCmd.Flags().Lookup("sat-level"))
	viper.BindPFlag(config.KeyStatusPort, runCmd.Flags().Lookup("status-port"))
	viper.BindPFlag(config.KeyWaylandDisplay, runCmd.Flags().Lookup("wayland-display"))
	viper.BindPFlag(config.KeyDBusService, runCmd.Flags().Lookup("dbus"))
}

func runRun(cmd *cobra.Command, args []string) error {
	configMgr, _, err := loadConfig()
	if err != nil {
		return err
	}

	titles, err := cmd.Flags().GetStringArray("title-match")
	if err != nil {
		return err
	}
	if len(titles) > 0 {
		configMgr.Override(config.KeyTitleFilters, titles)
	}

	cfg, err := configMgr.Get()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoTitleFilters) {
			return fmt.Errorf("%w (pass --title-match or use 'focusvibrance title add')", err)
		}
		return err
	}

	log := logger.WithComponent("run")
	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Float64("saturation", cfg.Saturation).
		Strs("title_filters", cfg.TitleFilters).
		Msg("Starting FocusVibrance")

	session, err := wayland.Connect(cfg.WaylandDisplay)
	if err != nil {
		return fmt.Errorf("failed to connect to compositor: %w", err)
	}
	defer session.Close()

	eng := engine.New(session, engine.Options{
		TitleFilters: cfg.TitleFilters,
		Saturation:   cfg.Saturation,
		DryRun:       runDryRun,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.StatusPort > 0 || cfg.DBusService {
		hub := api.NewHub()
		eng.SetObserver(hub)

		if cfg.StatusPort > 0 {
			server := api.NewServer(hub, configMgr)
			go func() {
				if err := server.ListenAndServe(ctx, cfg.StatusPort); err != nil {
					log.Error().Err(err).Msg("Status server stopped")
				}
			}()
		}

		if cfg.DBusService {
			bus := dbus.NewServer(hub)
			if err := bus.Start(); err != nil {
				// Status is optional; keep adjusting colours without it.
				log.Warn().Err(err).Msg("D-Bus status service unavailable")
			} else {
				go bus.Watch(ctx)
			}
		}
	}

	// The engine blocks on the socket; a signal unblocks it.
	go func() {
		<-ctx.Done()
		session.Interrupt()
	}()

	err = eng.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("Shutting down gracefully...")
		if err := eng.Restore(); err != nil {
			return fmt.Errorf("failed to restore colours: %w", err)
		}
		return nil
	}
	if errors.Is(err, engine.ErrTransformBlocked) {
		return fmt.Errorf("%w (is another colour transform client running?)", err)
	}
	return err
}
