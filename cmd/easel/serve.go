package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/config"
	"github.com/jackzampolin/easel/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Easel server",
	Long: `Start the Easel HTTP server.

The server opens the SQLite library, builds the configured image provider,
and exposes the REST API. Without an API key the provider degrades to the
offline mock, so the server is usable without any credentials.

Edits to the config file are picked up live; provider changes apply to the
next generation request.

Examples:
  easel serve                    # Start on default port 8750
  easel serve --port 3000        # Start on custom port
  easel serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		logger := newLogger(cm.Get())

		h, err := getHome()
		if err != nil {
			return err
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			Home:          h,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8750", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
