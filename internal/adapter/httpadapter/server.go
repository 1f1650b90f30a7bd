package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/ingest"
)

// Server exposes health, readiness, metrics, and weather lookup HTTP endpoints.
type Server struct {
	httpServer *http.Server
	catalog    *ingest.Catalog
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /station,
// and /weather routes. Weather routes answer 503 until the catalog holds a provider.
func NewServer(addr string, catalog *ingest.Catalog, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(catalog))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /station", s.handleStation)
	mux.HandleFunc("GET /weather", s.handleRange)
	mux.HandleFunc("GET /weather/{day}", s.handleDay)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type stationResponse struct {
	domain.StationMeta
	Summary     []string `json:"summary"`
	SourceFile  string   `json:"source_file"`
	FromCache   bool     `json:"from_cache"`
	Days        int      `json:"days"`
	First       string   `json:"first"`
	Last        string   `json:"last"`
	MissingDays []string `json:"missing_days"`
}

func (s *Server) handleStation(w http.ResponseWriter, _ *http.Request) {
	p := s.catalog.Provider()
	if p == nil {
		writeError(w, http.StatusServiceUnavailable, ingest.ErrNotReady)
		return
	}
	series := p.Series()
	missing := make([]string, 0)
	for _, d := range series.MissingDays() {
		missing = append(missing, d.Format(time.DateOnly))
	}
	writeJSON(w, http.StatusOK, stationResponse{
		StationMeta: p.Meta(),
		Summary:     p.Meta().DescriptionLines(),
		SourceFile:  p.Source(),
		FromCache:   p.FromCache(),
		Days:        series.Len(),
		First:       series.First().Format(time.DateOnly),
		Last:        series.Last().Format(time.DateOnly),
		MissingDays: missing,
	})
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p := s.catalog.Provider()
	if p == nil {
		writeError(w, http.StatusServiceUnavailable, ingest.ErrNotReady)
		return
	}
	rec, err := p.Get(day)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		s.logger.Error("weather lookup failed", "day", day.Format(time.DateOnly), "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleRange serves GET /weather?from=<day>&to=<day>, inclusive. Missing days are skipped.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	from, err := parseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, errors.New("to is before from"))
		return
	}
	p := s.catalog.Provider()
	if p == nil {
		writeError(w, http.StatusServiceUnavailable, ingest.ErrNotReady)
		return
	}
	records := p.Series().Range(from, to)
	if records == nil {
		records = []domain.DailyRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// parseDay accepts YYYYMMDD as in the source files, or YYYY-MM-DD.
func parseDay(raw string) (time.Time, error) {
	if len(raw) == len(domain.DateLayout) {
		return domain.ParseDate(raw)
	}
	return time.Parse(time.DateOnly, raw)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
