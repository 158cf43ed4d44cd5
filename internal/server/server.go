// Package server is the HTTP admin surface: health, metrics, status and
// video uploads into the library.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"streambot/internal/catalog"
	"streambot/internal/config"
	"streambot/internal/stream"
	"streambot/internal/version"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 8 << 30

// StatusReporter is the slice of the playback supervisor the server needs.
type StatusReporter interface {
	Status() (stream.State, string)
}

type Server struct {
	cfg        config.ServerConfig
	catalog    *catalog.Catalog
	supervisor StatusReporter
	videosDir  string
}

func New(cfg config.ServerConfig, cat *catalog.Catalog, sup StatusReporter, videosDir string) *Server {
	return &Server{cfg: cfg, catalog: cat, supervisor: sup, videosDir: videosDir}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("admin server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.Username != "" {
			r.Use(middleware.BasicAuth("streambot", map[string]string{
				s.cfg.Username: s.cfg.Password,
			}))
		}
		r.Get("/status", s.handleStatus)
		r.Get("/videos", s.handleVideos)
		r.Post("/upload", s.handleUpload)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, title := s.supervisor.Status()
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     version.AppName,
		"version": version.Version,
		"state":   string(state),
		"title":   title,
	})
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.All()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	type video struct {
		Name     string  `json:"name"`
		Title    string  `json:"title"`
		Size     int64   `json:"size"`
		Duration float64 `json:"duration"`
		Series   string  `json:"series,omitempty"`
		Season   int     `json:"season,omitempty"`
		Episode  int     `json:"episode,omitempty"`
	}
	out := make([]video, len(entries))
	for i, e := range entries {
		out[i] = video{
			Name: e.Name, Title: e.Title, Size: e.Size, Duration: e.Duration,
			Series: e.Series, Season: e.Season, Episode: e.Episode,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpload accepts one multipart file field named "file" and drops it
// into the videos directory, then refreshes the catalog so it becomes
// playable immediately.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == "/" || strings.ContainsAny(name, `\/`) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid file name"})
		return
	}

	dst, err := os.Create(filepath.Join(s.videosDir, name))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if _, err := s.catalog.Refresh(r.Context()); err != nil {
		log.Warn().Err(err).Msg("refreshing catalog after upload")
	}

	log.Info().Str("file", name).Int64("size", header.Size).Msg("video uploaded")
	writeJSON(w, http.StatusCreated, map[string]string{"file": name})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
