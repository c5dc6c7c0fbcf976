// Package api serves the cleaned dataset and its statistics over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/report"
	"github.com/sells-group/orgaos-cli/internal/table"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Server answers read-only queries over one loaded dataset.
type Server struct {
	ds      *table.Table
	stats   *report.Stats
	origins []string
	log     *zap.Logger
}

// NewServer computes the statistics for ds once and returns a Server.
func NewServer(ds *table.Table, corsOrigins []string) *Server {
	return &Server{
		ds:      ds,
		stats:   report.Compute(ds),
		origins: corsOrigins,
		log:     zap.L().With(zap.String("component", "api")),
	}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.listStats)
		r.Get("/stats/{name}", s.getStats)
		r.Get("/memberships", s.listMemberships)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": s.ds.Len()})
}

func (s *Server) listStats(w http.ResponseWriter, _ *http.Request) {
	sheets := s.stats.Sheets()
	names := make([]string, len(sheets))
	for i, sh := range sheets {
		names[i] = sh.Name
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stats": names})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sh, ok := s.stats.Sheet(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown statistic: "+name)
		return
	}
	s.writeJSON(w, http.StatusOK, sh)
}

// listMemberships filters by term, state and party (exact match) and caps
// the result at limit rows.
func (s *Server) listMemberships(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	filters := map[string]string{
		model.ColTerm:  q.Get("term"),
		model.ColState: q.Get("uf"),
		model.ColParty: q.Get("party"),
	}

	cols := s.ds.Columns()
	rows := []map[string]any{}
	total := 0
	for i := range s.ds.Len() {
		if !matches(s.ds, i, filters) {
			continue
		}
		total++
		if len(rows) >= limit {
			continue
		}
		obj := make(map[string]any, len(cols))
		for j, c := range s.ds.Row(i) {
			if c.Valid {
				obj[cols[j]] = c.Value
			} else {
				obj[cols[j]] = nil
			}
		}
		rows = append(rows, obj)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total": total, "rows": rows})
}

func matches(ds *table.Table, i int, filters map[string]string) bool {
	for col, want := range filters {
		if want == "" {
			continue
		}
		c := ds.Get(i, col)
		if !c.Valid || c.Value != want {
			return false
		}
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("api: encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
