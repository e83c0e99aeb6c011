package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsawler/pdfoutline/internal/config"
	"github.com/tsawler/pdfoutline/server"
)

var (
	serveAddr   string
	serveInput  string
	serveOutput string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the outline HTTP API",
	Long: `Serve the outline HTTP API.

Endpoints:
  POST /api/upload          upload a PDF (multipart field "file") and extract it
  GET  /api/files           list the stems of every stored outline
  GET  /api/outline/{stem}  fetch a stored outline
  GET  /api/pdf/{stem}      fetch an uploaded PDF
  GET  /health              health check

Uploads are stored in the batch input directory and outlines in the batch
output directory.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :5001)")
	serveCmd.Flags().StringVarP(&serveInput, "input", "i", "", "upload directory (default from config)")
	serveCmd.Flags().StringVarP(&serveOutput, "output", "o", "", "outline directory (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if serveAddr != "" {
			c.Server.Addr = serveAddr
		}
		if serveInput != "" {
			c.Batch.InputDir = serveInput
		}
		if serveOutput != "" {
			c.Batch.OutputDir = serveOutput
		}
	})
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, cmd.ErrOrStderr())

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		InputDir:       cfg.Batch.InputDir,
		OutputDir:      cfg.Batch.OutputDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Indent:         cfg.IndentString(),
		Settings:       settings,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
