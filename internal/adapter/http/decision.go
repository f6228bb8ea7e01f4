package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"podads/internal/core/domain"
)

// maxBatchCount bounds a single batch call; larger sweeps should page.
const maxBatchCount = 500

// decisionRequest is the wire payload for a single decision. The seed is
// optional; when absent the server picks one, which makes the call
// non-reproducible by choice of the caller.
type decisionRequest struct {
	domain.AdRequest
	Seed *int64 `json:"seed"`
}

// batchRequest evaluates the same request under count consecutive seeds.
type batchRequest struct {
	decisionRequest
	Count int `json:"count"`
}

// normalize fills in the fields a caller may omit: request id, timestamp
// and seed.
func (r *decisionRequest) normalize() int64 {
	if r.RequestID == "" {
		r.RequestID = "req-" + uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.Seed != nil {
		return *r.Seed
	}
	return time.Now().UnixNano() % 1_000_000
}

// handleDecision runs the pipeline once and returns the full decision
// trace. A no-fill decision is still HTTP 200; only malformed input maps
// to 400 and catalog failures to 500.
func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	seed := req.normalize()

	decision, err := h.svc.Decide(r.Context(), req.AdRequest, seed)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, decision)
}

// handleDecisionBatch runs the pipeline under count consecutive seeds.
func (h *Handler) handleDecisionBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Count > maxBatchCount {
		http.Error(w, "batch count too large", http.StatusBadRequest)
		return
	}
	seed := req.normalize()

	decisions, err := h.svc.DecideBatch(r.Context(), req.AdRequest, seed, req.Count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]any{"decisions": decisions})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger.Error("decision error", slog.Any("error", err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and send generic error
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
