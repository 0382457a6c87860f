package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/elonfeng/newsrelay/internal/store"
	"github.com/elonfeng/newsrelay/pkg/source"
)

// Server provides a read-only status API over the delivery journal.
// It never touches the live seen-state.
type Server struct {
	journal store.Store
	sources []source.Source
	port    int
	log     zerolog.Logger
}

// New creates a new HTTP server. journal may be nil, in which case the
// delivery endpoints report the journal as disabled.
func New(journal store.Store, sources []source.Source, port int, log zerolog.Logger) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		journal: journal,
		sources: sources,
		port:    port,
		log:     log,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/deliveries", s.handleDeliveries)
	mux.HandleFunc("/api/v1/sources", s.handleSources)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", srv.Addr).Msg("status server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.journal == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "journal disabled"})
		return
	}

	opts := store.ListOpts{Limit: 50}
	q := r.URL.Query()
	if src := q.Get("source"); src != "" {
		t, ok := source.ParseSourceType(src)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown source " + src})
			return
		}
		opts.Source = t
	}
	if since := q.Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			opts.Since = t.UTC()
		}
	}
	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	deliveries, err := s.journal.ListDeliveries(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  deliveries,
		"count": len(deliveries),
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	counts := map[source.SourceType]int{}
	if s.journal != nil {
		c, err := s.journal.CountBySource(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		counts = c
	}

	type sourceInfo struct {
		Name      string `json:"name"`
		StateKey  string `json:"state_key"`
		Delivered int    `json:"delivered"`
	}

	infos := make([]sourceInfo, 0, len(s.sources))
	for _, src := range s.sources {
		infos = append(infos, sourceInfo{
			Name:      string(src.Name()),
			StateKey:  src.StateKey(),
			Delivered: counts[src.Name()],
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  infos,
		"count": len(infos),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
