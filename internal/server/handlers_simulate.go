package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/foregonehq/foregone/internal/models"
	"github.com/foregonehq/foregone/internal/services/simulation"
)

// spendItemDTO is the wire form of a spend item. Start dates arrive as
// calendar days, not timestamps.
type spendItemDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Cost      float64 `json:"cost"`
	Currency  string  `json:"currency"`
	Frequency string  `json:"frequency"`
	StartDate string  `json:"start_date"`
	Ticker    string  `json:"ticker"`
}

type simulateRequestDTO struct {
	Items    []spendItemDTO `json:"items"`
	Currency string         `json:"currency"`
}

type simulateItemRequestDTO struct {
	Item     spendItemDTO `json:"item"`
	Currency string       `json:"currency"`
}

func (d *spendItemDTO) toModel() (models.SpendItem, error) {
	start, err := time.Parse("2006-01-02", d.StartDate)
	if err != nil {
		return models.SpendItem{}, fmt.Errorf("item %q: invalid start_date %q, expected YYYY-MM-DD", d.ID, d.StartDate)
	}
	return models.SpendItem{
		ID:        d.ID,
		Name:      d.Name,
		Cost:      d.Cost,
		Currency:  d.Currency,
		Frequency: models.Frequency(d.Frequency),
		StartDate: start,
		Ticker:    d.Ticker,
	}, nil
}

func (s *Server) decodeSimulateRequest(w http.ResponseWriter, r *http.Request) (*models.SimulationRequest, bool) {
	var dto simulateRequestDTO
	if !DecodeJSON(w, r, &dto) {
		return nil, false
	}

	req := &models.SimulationRequest{
		Items:    make([]models.SpendItem, 0, len(dto.Items)),
		Currency: dto.Currency,
	}
	if req.Currency == "" {
		req.Currency = s.app.Config.Currency
	}

	for i := range dto.Items {
		item, err := dto.Items[i].toModel()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		req.Items = append(req.Items, item)
	}

	return req, true
}

// handleSimulate handles POST /api/simulate.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	req, ok := s.decodeSimulateRequest(w, r)
	if !ok {
		return
	}

	result, err := s.app.SimulationService.SimulateBasket(r.Context(), req)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleSimulateItem handles POST /api/simulate/item.
func (s *Server) handleSimulateItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var dto simulateItemRequestDTO
	if !DecodeJSON(w, r, &dto) {
		return
	}

	item, err := dto.Item.toModel()
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	currency := dto.Currency
	if currency == "" {
		currency = s.app.Config.Currency
	}

	result, err := s.app.SimulationService.SimulateItem(r.Context(), item, currency)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleSimulateChart handles POST /api/simulate/chart, returning a PNG.
func (s *Server) handleSimulateChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	req, ok := s.decodeSimulateRequest(w, r)
	if !ok {
		return
	}

	png, err := s.app.SimulationService.RenderChart(r.Context(), req)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeSimulationError maps service errors to HTTP status codes.
// Validation and ceiling failures are client errors; everything else is a 500.
func writeSimulationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, simulation.ErrNoItems),
		errors.Is(err, simulation.ErrTooManyItems),
		errors.Is(err, simulation.ErrWindowTooLarge):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		if isValidationError(err) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// isValidationError reports whether err came from request validation rather
// than a downstream failure. The simulation service wraps per-item failures
// with the item ID, so the markers are stable.
func isValidationError(err error) bool {
	msg := err.Error()
	markers := []string{
		"cost must be positive",
		"unknown frequency",
		"ticker is required",
		"start date is required",
		"currency is required",
		"need at least 2 data points",
	}
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
