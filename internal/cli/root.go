// Package cli provides the command-line interface for the trader.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ib-trader/internal/config"
	"ib-trader/internal/logging"
	"ib-trader/internal/wire"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-10-18"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
}

// NewRootCmd creates the root command for the CLI. Configuration is loaded in
// the persistent pre-run so that --config is honoured.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	app := &App{Logger: logger}

	rootCmd := &cobra.Command{
		Use:   "trader",
		Short: "Command line client for the TWS / IB Gateway API",
		Long: `trader talks to Trader Workstation or IB Gateway over the native socket API.

It decodes every inbound message into typed callbacks, offers blocking requests
for account, contract and historical data, streams market data to the terminal
or to websocket clients, and can replay captured sessions offline.

Use 'trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/ib-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("host", "", "TWS host (overrides config)")
	rootCmd.PersistentFlags().Int("port", 0, "TWS port (overrides config)")
	rootCmd.PersistentFlags().Int64("client-id", -1, "API client id (overrides config)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newDecodeCmd(app))
	addSessionCommands(rootCmd, app)
	rootCmd.AddCommand(newStreamCmd(app))

	return rootCmd
}

// init loads configuration, applies flag overrides and rebuilds the logger.
func (a *App) init(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	a.ConfigDir, _ = cmd.Flags().GetString("config")
	cfg, err := config.Load(a.ConfigDir)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Connection.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Connection.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("client-id") {
		cfg.Connection.ClientID, _ = flags.GetInt64("client-id")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.Config = cfg
	a.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
	if cfg.File == "" {
		a.Logger.Info().Str("path", config.ConfigPath(a.ConfigDir)).Msg("Config not found, wrote template and using defaults")
	}
	return nil
}

// requestContext bounds a blocking request by the configured request timeout.
func (a *App) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.Config.API.RequestTimeout)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]interface{}{
					"version":        Version,
					"build_date":     BuildDate,
					"min_client_ver": wire.MinClientVer,
					"max_client_ver": wire.MaxClientVer,
				})
				return
			}
			output.Printf("trader v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			output.Dim("API versions: %d..%d", wire.MinClientVer, wire.MaxClientVer)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			path := config.ConfigPath(app.ConfigDir)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": path})
			} else {
				output.Println(path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Connection")
	output.Printf("  Endpoint:        %s:%d\n", cfg.Connection.Host, cfg.Connection.Port)
	output.Printf("  Client ID:       %d\n", cfg.Connection.ClientID)
	output.Printf("  Timeout:         %s\n", cfg.Connection.ConnectTimeout)
	output.Printf("  Reconnect:       %v (max %d attempts)\n", cfg.Connection.Reconnect, cfg.Connection.MaxRetries)
	output.Println()

	output.Bold("API")
	output.Printf("  Versions:        %d..%d\n", cfg.API.MinVersion, cfg.API.MaxVersion)
	output.Printf("  Msgs/second:     %.0f\n", cfg.API.MessagesPerSecond)
	output.Printf("  Market data:     %d\n", cfg.API.MarketDataType)
	output.Printf("  Request timeout: %s\n", cfg.API.RequestTimeout)
	output.Println()

	output.Bold("Capture")
	output.Printf("  Enabled:         %v\n", cfg.Capture.Enabled)
	output.Printf("  Path:            %s\n", cfg.Capture.Path)
	output.Println()

	output.Bold("Storage")
	output.Printf("  Enabled:         %v\n", cfg.Storage.Enabled)
	output.Printf("  Database:        %s\n", cfg.Storage.DBPath)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v %s\n", cfg.Logging.File, cfg.Logging.FilePath)
}

// Execute runs the root command and reports errors on stderr.
func Execute(ctx context.Context, logger zerolog.Logger) int {
	root := NewRootCmd(logger)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
