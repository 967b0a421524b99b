package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// handleMarketSearch handles GET /api/market/search?q={query}&limit={n}.
func (s *Server) handleMarketSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	candidates, err := s.app.MarketService.Resolve(r.Context(), query, limit)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":      query,
		"candidates": candidates,
	})
}

// handleMarketHistory handles GET /api/market/history/{ticker}?from={date}.
func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/api/market/history/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}
	ticker = strings.ToUpper(ticker)

	from := time.Now().AddDate(-5, 0, 0)
	if f := r.URL.Query().Get("from"); f != "" {
		parsed, err := time.Parse("2006-01-02", f)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid 'from' date, expected YYYY-MM-DD")
			return
		}
		from = parsed
	}

	data, stale, err := s.app.MarketService.GetHistory(r.Context(), ticker, from)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":       data.Ticker,
		"currency":     data.Currency,
		"name":         data.Name,
		"history":      data.History,
		"last_updated": data.LastUpdated,
		"stale":        stale,
	})
}
