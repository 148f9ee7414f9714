package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryanchriswhite/FocusVibrance/internal/config"
	"github.com/bryanchriswhite/FocusVibrance/internal/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "focusvibrance",
		Short: "FocusVibrance - Per-window colour vibrance for Hyprland",
		Long: `FocusVibrance boosts colour saturation on the displays showing the
focused window, but only while that window's title is one you asked for.

It follows toplevel windows through the wlr foreign toplevel protocol and
drives Hyprland's colour transform control, so games get vivid colours and
everything else stays untouched.`,
		SilenceUsage: true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/focusvibrance/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", true, "human readable log output")

	// Bind flags to viper
	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(config.KeyLogPretty, rootCmd.PersistentFlags().Lookup("pretty"))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig opens the config file and layers any flags the user set on
// top of it. The logger is initialized from the result.
func loadConfig() (*config.Manager, *config.Config, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	for _, key := range config.Keys {
		if !viper.IsSet(key) {
			continue
		}
		switch key {
		case config.KeySaturation:
			configMgr.Override(key, viper.GetFloat64(key))
		case config.KeyStatusPort:
			configMgr.Override(key, viper.GetInt(key))
		case config.KeyLogPretty, config.KeyDBusService:
			configMgr.Override(key, viper.GetBool(key))
		case config.KeyTitleFilters:
			// Set from the command's own flag; titles may contain commas.
		default:
			if v := viper.GetString(key); v != "" {
				configMgr.Override(key, v)
			}
		}
	}

	cfg, err := configMgr.Get()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return configMgr, cfg, nil
}
