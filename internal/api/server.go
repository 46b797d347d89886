package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/sentinel/internal/engine"
	"github.com/MikeSquared-Agency/sentinel/internal/mapping"
	"github.com/MikeSquared-Agency/sentinel/internal/report"
)

type Server struct {
	router *chi.Mux
	port   int
	engine *engine.Engine
	cache  *mapping.Cache
}

// ReportRequest is the JSON payload for report generation.
type ReportRequest struct {
	ChatText   string `json:"chat_text"`
	CutoffDate string `json:"cutoff_date"`
	SLAMinutes int    `json:"sla_minutes,omitempty"`
	MappingCSV string `json:"mapping_csv,omitempty"`
	Policy     string `json:"policy,omitempty"`
}

// ReportResponse carries the rows, their CSV rendering and run metadata.
type ReportResponse struct {
	Rows []report.Row `json:"rows"`
	CSV  string       `json:"csv"`
	Meta ReportMeta   `json:"meta"`
}

type ReportMeta struct {
	ReportID        string `json:"report_id"`
	Policy          string `json:"policy"`
	MappingCount    int    `json:"mapping_count"`
	MatchedPIDCount int    `json:"matched_pid_count"`
}

func NewServer(port int, apiToken string, eng *engine.Engine, cache *mapping.Cache) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		engine: eng,
		cache:  cache,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/sentinel/status", s.status)
	router.Route("/api/v1/reports", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/sla", s.generateReport)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware rejects requests without the configured bearer token.
// An empty token disables auth.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":           "sentinel",
		"status":          "ready",
		"mapping_loaded":  s.cache.Loaded(),
		"mapping_entries": s.cache.Size(),
	})
}

func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	res, err := s.engine.Generate(r.Context(), engine.Request{
		ChatText:   req.ChatText,
		CutoffDate: req.CutoffDate,
		SLAMinutes: req.SLAMinutes,
		MappingCSV: req.MappingCSV,
		Policy:     req.Policy,
	})
	if err != nil {
		var ve *engine.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		slog.Error("report generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{
		Rows: res.Report.Rows,
		CSV:  res.Report.CSV,
		Meta: ReportMeta{
			ReportID:        res.ReportID,
			Policy:          res.Policy,
			MappingCount:    res.MappingCount,
			MatchedPIDCount: res.Report.MatchedPIDs,
		},
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
