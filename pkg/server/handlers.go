package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"lanekit/shaperd/pkg/policy"
	"lanekit/shaperd/pkg/shaping"
	"lanekit/shaperd/pkg/telemetry/metrics"
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// HealthHandler reports liveness plus the active policy on the default
// interface.
type HealthHandler struct {
	controller *shaping.Controller
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(c *shaping.Controller) *HealthHandler {
	return &HealthHandler{controller: c}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	record := h.controller.Current("")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"policy":    record.Name,
		"timestamp": time.Now().Unix(),
	})
}

// PoliciesHandler lists the catalog.
type PoliciesHandler struct {
	controller *shaping.Controller
}

// NewPoliciesHandler creates a new catalog listing handler.
func NewPoliciesHandler(c *shaping.Controller) *PoliciesHandler {
	return &PoliciesHandler{controller: c}
}

// ServeHTTP lists policy names in catalog order plus full descriptors.
func (h *PoliciesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cat := h.controller.Catalog()
	details := make(map[string]*policy.Descriptor, cat.Len())
	for _, desc := range cat.All() {
		details[desc.Name] = desc
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"policies": cat.List(),
		"details":  details,
	})
}

// applyRequest is the body of POST /policy/apply.
type applyRequest struct {
	Policy    string `json:"policy"`
	Interface string `json:"interface,omitempty"`
}

// ApplyHandler applies a named policy to an interface.
type ApplyHandler struct {
	controller *shaping.Controller
	metrics    *metrics.ShapingMetrics
}

// NewApplyHandler creates a new apply handler. m may be nil.
func NewApplyHandler(c *shaping.Controller, m *metrics.ShapingMetrics) *ApplyHandler {
	return &ApplyHandler{controller: c, metrics: m}
}

// ServeHTTP implements http.Handler for policy application.
func (h *ApplyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Policy == "" {
		writeError(w, http.StatusBadRequest, "policy name is required")
		return
	}

	iface := h.controller.Interface(req.Interface)
	start := time.Now()
	result, err := h.controller.ApplyPolicy(r.Context(), req.Policy, iface)
	duration := time.Since(start)

	if err != nil {
		var notFound *policy.NotFoundError
		var unsupported *shaping.UnsupportedKindError
		switch {
		case errors.As(err, &notFound):
			h.recordApply(req.Policy, metrics.OutcomeNotFound, duration)
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &unsupported):
			h.recordApply(req.Policy, metrics.OutcomeUnsupported, duration)
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			// The executor started, so the interface is back to unshaped.
			h.recordApply(req.Policy, metrics.OutcomeFailed, duration)
			if h.metrics != nil {
				h.metrics.SetActive(iface, "")
			}
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.recordApply(req.Policy, metrics.OutcomeSuccess, duration)
	if h.metrics != nil {
		h.metrics.SetActive(result.Interface, result.Policy)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "applied",
		"policy":     result.Policy,
		"interface":  result.Interface,
		"operations": result.Operations,
	})
}

func (h *ApplyHandler) recordApply(name, outcome string, duration time.Duration) {
	if h.metrics != nil {
		h.metrics.RecordApply(name, outcome, duration)
	}
}

// clearRequest is the body of POST /policy/clear. The body is optional.
type clearRequest struct {
	Interface string `json:"interface,omitempty"`
}

// ClearHandler removes shaping from an interface.
type ClearHandler struct {
	controller *shaping.Controller
	metrics    *metrics.ShapingMetrics
}

// NewClearHandler creates a new clear handler. m may be nil.
func NewClearHandler(c *shaping.Controller, m *metrics.ShapingMetrics) *ClearHandler {
	return &ClearHandler{controller: c, metrics: m}
}

// ServeHTTP implements http.Handler for shaping removal.
func (h *ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req clearRequest
	if r.Body != nil {
		// An empty body clears the default interface.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	iface := h.controller.Interface(req.Interface)
	if err := h.controller.ClearShaping(r.Context(), iface); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.RecordClear()
		h.metrics.SetActive(iface, "")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "cleared",
		"interface": iface,
	})
}

// CurrentHandler reports the active-policy record for an interface along
// with the scheduler's own qdisc listing.
type CurrentHandler struct {
	controller *shaping.Controller
}

// NewCurrentHandler creates a new current-policy handler.
func NewCurrentHandler(c *shaping.Controller) *CurrentHandler {
	return &CurrentHandler{controller: c}
}

// ServeHTTP implements http.Handler for the current-policy query.
func (h *CurrentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	iface := h.controller.Interface(r.URL.Query().Get("interface"))
	record := h.controller.Current(iface)

	response := map[string]any{
		"interface": iface,
		"name":      record.Name,
		"status":    record.Status,
	}
	if record.Config != nil {
		response["config"] = record.Config
	}

	// The qdisc listing is advisory; the record is still useful when tc
	// itself is unavailable.
	if qdisc, err := h.controller.ShowQdisc(r.Context(), iface, false); err == nil {
		response["tc_status"] = qdisc
	} else {
		response["tc_error"] = err.Error()
	}

	writeJSON(w, http.StatusOK, response)
}

// StatsHandler reports the scheduler's per-qdisc statistics for an
// interface.
type StatsHandler struct {
	controller *shaping.Controller
}

// NewStatsHandler creates a new statistics handler.
func NewStatsHandler(c *shaping.Controller) *StatsHandler {
	return &StatsHandler{controller: c}
}

// ServeHTTP implements http.Handler for scheduler statistics.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	iface := h.controller.Interface(r.URL.Query().Get("interface"))
	stats, err := h.controller.ShowQdisc(r.Context(), iface, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"interface": iface,
		"qdisc":     stats,
	})
}
