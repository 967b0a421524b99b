package server

import (
	"net/http"
	"time"

	"github.com/foregonehq/foregone/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Simulation
	mux.HandleFunc("/api/simulate", s.handleSimulate)
	mux.HandleFunc("/api/simulate/item", s.handleSimulateItem)
	mux.HandleFunc("/api/simulate/chart", s.handleSimulateChart)

	// Market data
	mux.HandleFunc("/api/market/search", s.handleMarketSearch)
	mux.HandleFunc("/api/market/history/", s.handleMarketHistory)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uptime := time.Since(s.app.StartupTime).Round(time.Second)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.app.Config.Environment,
		"currency":          s.app.Config.Currency,
		"storage_path":      s.app.Config.Storage.Path,
		"logging_level":     s.app.Config.Logging.Level,
		"max_items":         s.app.Config.Simulation.MaxItems,
		"max_window_days":   s.app.Config.Simulation.MaxWindowDays,
		"downsample_target": s.app.Config.Simulation.DownsampleTarget,
		"refresh_schedule":  s.app.Config.Simulation.RefreshSchedule,
		"uptime":            uptime.String(),
		"started_at":        s.app.StartupTime,
	})
}
