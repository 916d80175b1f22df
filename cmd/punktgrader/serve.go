package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/internal/config"
	"github.com/AlvinPalmgren/PunktGrader/internal/home"
	"github.com/AlvinPalmgren/PunktGrader/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PunktGrader server",
	Long: `Start the PunktGrader HTTP server.

The server holds one grading session at a time. Uploaded exams, stamped
pages and finalized documents live under the home directory and are
removed when the session is reset or replaced.

Examples:
  punktgrader serve                    # Start on default port 8080
  punktgrader serve --port 3000        # Start on custom port
  punktgrader serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		configMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		host := serveHost
		port := servePort
		if !cmd.Flags().Changed("host") {
			host = configMgr.Get().Server.Host
		}
		if !cmd.Flags().Changed("port") {
			port = configMgr.Get().Server.Port
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Home:          h,
			ConfigManager: configMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
