/*
handlers.go - HTTP API handlers for the tip distribution service

PURPOSE:
  Exposes the allocation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine and
  the store.

ENDPOINTS:
  GET    /                        Service banner
  POST   /api/calculate           Compute a tip allocation
  POST   /api/distributions       Save a distribution snapshot
  GET    /api/distributions       Distribution history (?limit=N)
  DELETE /api/distributions/{id}  Delete a stored distribution
  GET    /api/employees           Known-employee registry (?limit=N)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate business rules (positive pool, non-empty staff, positive hours)
  3. Call the allocation engine / store
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Business-rule violations, invalid input
  - 404: Resource not found
  - 500: Storage errors
  The engine itself never fails; every error here is a caller concern.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diomavro/tip-app/allocation"
	"github.com/diomavro/tip-app/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler backed by the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// Root returns the service banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tip Distribution API"})
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate computes a tip allocation and returns the employee rows.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	employees := toEmployeeInputs(req.Employees)
	if msg := validateCalculation(req.TotalTips, employees); msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}

	rows := allocation.Allocate(req.TotalTips, employees)
	writeJSON(w, http.StatusOK, toResultDTOs(allocation.EmployeeResults(rows)))
}

// validateCalculation enforces the business rules the engine leaves to its
// callers. Returns an error message, or "" when the request is valid.
func validateCalculation(totalTips float64, employees []allocation.EmployeeInput) string {
	if totalTips <= 0 {
		return "Total tips must be greater than 0"
	}
	if len(employees) == 0 {
		return "At least one employee is required"
	}
	if allocation.TotalHours(employees) <= 0 {
		return "Total hours must be greater than 0"
	}
	return ""
}

// =============================================================================
// DISTRIBUTIONS
// =============================================================================

// SaveDistribution stores a distribution snapshot and refreshes the
// known-employee registry.
// POST /api/distributions
func (h *Handler) SaveDistribution(w http.ResponseWriter, r *http.Request) {
	var req SaveDistributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	employees := toEmployeeInputs(req.Employees)

	// The snapshot is stored verbatim and never reinterpreted.
	payload, err := json.Marshal(map[string]any{
		"employees": req.Employees,
		"results":   req.Results,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error saving to database", err)
		return
	}

	rec := sqlite.DistributionRecord{
		ID:         uuid.NewString(),
		TotalTips:  req.TotalTips,
		TotalHours: allocation.TotalHours(employees),
		Payload:    payload,
	}
	if err := h.Store.SaveDistribution(ctx, rec); err != nil {
		slog.Error("failed to save distribution", "error", err)
		writeError(w, http.StatusInternalServerError, "Error saving to database", err)
		return
	}

	// Refresh the registry with the multiplier each employee actually
	// resolved to, explicit or role-derived.
	for _, emp := range employees {
		mult, _ := emp.EffectiveMultiplier().Float64()
		err := h.Store.UpsertEmployee(ctx, sqlite.EmployeeRecord{
			Name:       emp.Name,
			Role:       emp.Role,
			Multiplier: mult,
		})
		if err != nil {
			slog.Error("failed to upsert employee", "name", emp.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "Error saving to database", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, SaveDistributionResponse{
		ID:      rec.ID,
		Message: "Tip distribution saved successfully",
	})
}

// ListDistributions returns stored distributions, newest first.
// GET /api/distributions?limit=N
func (h *Handler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 10)

	records, err := h.Store.ListDistributions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error retrieving history", err)
		return
	}

	dtos := make([]DistributionDTO, len(records))
	for i, rec := range records {
		dtos[i] = DistributionDTO{
			ID:           rec.ID,
			WeekDate:     rec.WeekDate.Format("2006-01-02"),
			TotalTips:    rec.TotalTips,
			TotalHours:   rec.TotalHours,
			EmployeeData: rec.Payload,
			CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteDistribution removes a stored distribution.
// DELETE /api/distributions/{id}
func (h *Handler) DeleteDistribution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.Store.DeleteDistribution(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error deleting record", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Record deleted successfully"})
}

// =============================================================================
// EMPLOYEE REGISTRY
// =============================================================================

// ListKnownEmployees returns previously-seen employees, most recent first.
// GET /api/employees?limit=N
func (h *Handler) ListKnownEmployees(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)

	records, err := h.Store.ListEmployees(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error retrieving employees", err)
		return
	}

	dtos := make([]KnownEmployeeDTO, len(records))
	for i, rec := range records {
		dtos[i] = KnownEmployeeDTO{
			Name:       rec.Name,
			Role:       rec.Role,
			Multiplier: rec.Multiplier,
			LastSeen:   rec.LastSeen.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
