package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/libdoc2tb/internal/export"
	"github.com/dyluth/libdoc2tb/internal/printer"
	"github.com/dyluth/libdoc2tb/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve project-dump conversion over HTTP",
	Long: `Start an HTTP server that converts uploaded libdoc specs.

Endpoints:
  POST /api/v1/project-dumps   Body: one libdoc JSON spec or an array of them.
                               Returns application/xml, or application/zip
                               with ?format=zip.
  GET  /healthz                Liveness check.

The project details, settings and repository id come from libdoc2tb.yml.
Resource attachments are always off: the "source" of an uploaded spec is
ignored.

Example:
  libdoc2tb serve --addr :8080
  curl --data-binary @specs/Calc.json localhost:8080/api/v1/project-dumps`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Uploaded specs carry no resource files to attach.
	cfg.Attachments.AttachResources = false
	srv := server.New(export.New(cfg, nil), nil)

	printer.Step("Serving project-dumps on %s\n", serveAddr)
	if err := srv.ListenAndServe(ctx, serveAddr); err != nil {
		return printer.ErrorWithContext(
			"server failed",
			err.Error(),
			map[string]string{"Address": serveAddr},
			[]string{"Choose another address:\n  libdoc2tb serve --addr :8081"},
		)
	}
	printer.Success("Server stopped\n")
	return nil
}
