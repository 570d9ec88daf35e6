// Package server exposes the assembler over HTTP: clients POST libdoc JSON
// and receive the project-dump in the response body.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dyluth/libdoc2tb/pkg/libdoc"
	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// MaxRequestBytes caps the size of an uploaded spec document.
const MaxRequestBytes = 32 << 20

// UnresolvedHeader carries the number of parameter types that could not be resolved.
const UnresolvedHeader = "X-Unresolved-References"

// Builder assembles loaded libraries into a project-dump.
type Builder interface {
	Build(libs []*libdoc.Library) (*projectdump.Document, *projectdump.Report, error)
}

// Server serves project-dumps built by a Builder.
type Server struct {
	builder Builder
	logger  *slog.Logger
}

// New creates a server. A nil logger uses slog.Default().
func New(builder Builder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{builder: builder, logger: logger}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		Debug:          false,
	}).Handler)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/project-dumps", s.createProjectDump)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) createProjectDump(w http.ResponseWriter, r *http.Request) {
	format := projectdump.FormatXML
	switch q := r.URL.Query().Get("format"); q {
	case "", string(projectdump.FormatXML):
	case string(projectdump.FormatZip):
		format = projectdump.FormatZip
	default:
		http.Error(w, fmt.Sprintf("unsupported format '%s': use xml or zip", q), http.StatusBadRequest)
		return
	}

	libs, err := libdoc.Decode(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Source paths name files on the client's machine, never on ours.
	for _, lib := range libs {
		lib.Source = ""
	}

	doc, report, err := s.builder.Build(libs)
	if err != nil {
		if errors.Is(err, projectdump.ErrMissingSource) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.logger.Error("Failed to assemble project-dump", "error", err)
		http.Error(w, "failed to assemble project-dump", http.StatusInternalServerError)
		return
	}

	var body bytes.Buffer
	contentType := "application/xml"
	if format == projectdump.FormatZip {
		contentType = "application/zip"
		err = projectdump.WriteArchive(&body, doc)
	} else {
		_, err = doc.WriteTo(&body)
	}
	if err != nil {
		s.logger.Error("Failed to write project-dump", "format", format, "error", err)
		http.Error(w, "failed to write project-dump", http.StatusInternalServerError)
		return
	}

	s.logger.Debug("Served project-dump",
		"libraries", len(libs),
		"format", format,
		"unresolved", len(report.Unresolved))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set(UnresolvedHeader, strconv.Itoa(len(report.Unresolved)))
	if format == projectdump.FormatZip {
		w.Header().Set("Content-Disposition", `attachment; filename="project-dump.zip"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
}
