package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/doctorbookings/homevisit-api/internal/observability/metrics"
	"github.com/doctorbookings/homevisit-api/internal/ratelimit"
	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

// Notifier delivers owner alerts for captured leads. Delivery outcome is a
// bare boolean; it never fails the booking flow.
type Notifier interface {
	SendLeadAlert(ctx context.Context, lead *Lead) bool
}

// Roughly one in ten requests triggers a limiter sweep, bounding memory
// growth without adding latency to most submissions.
const sweepProbability = 0.1

const notifyTimeout = 15 * time.Second

// Handler handles POST /api/leads submissions.
type Handler struct {
	limiter   ratelimit.Limiter
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *logging.Logger
	mainPhone string

	now    func() time.Time
	chance func() float64
}

// NewHandler creates a lead submission handler. mainPhone appears in
// patient-facing failure messages as the human fallback path.
func NewHandler(limiter ratelimit.Limiter, notifier Notifier, m *metrics.Metrics, logger *logging.Logger, mainPhone string) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		limiter:   limiter,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		mainPhone: mainPhone,
		now:       time.Now,
		chance:    rand.Float64,
	}
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Create handles POST /api/leads requests: rate-check, decode, validate,
// fire-and-forget notify, respond. Once validation passes the patient always
// gets a success response, whatever happens to the alert.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	defer h.recoverPanic(w)

	key := ratelimit.ClientKey(r)
	now := h.now()

	if !h.limiter.Admit(r.Context(), key, now) {
		h.logger.Warn("lead submission rate limited", "client", key)
		h.metrics.ObserveRateLimited("leads")
		h.metrics.ObserveLead("rate_limited")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error: fmt.Sprintf("Too many submissions. Please try again in 5 minutes or call %s directly.", h.mainPhone),
		})
		return
	}

	if h.chance() < sweepProbability {
		go h.limiter.Sweep(context.Background(), h.now())
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.Error("failed to decode lead submission", "error", err)
		h.metrics.ObserveLead("error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: h.fallbackMessage()})
		return
	}

	lead, errs := Validate(raw)
	if errs != nil {
		h.metrics.ObserveLead("invalid")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: strings.Join(errs, ", ")})
		return
	}

	lead.Timestamp = now.UTC()
	lead.Source = DefaultSource

	// Alert delivery must never delay or fail the patient's response.
	go h.notify(lead)

	h.metrics.ObserveLead("accepted")
	h.logger.Info("lead captured", logging.Redact(
		"name", lead.Name,
		"phone", lead.Phone,
		"age", lead.Age,
		"city", lead.City,
		"service", lead.Service,
	)...)
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Lead captured successfully"})
}

func (h *Handler) notify(lead *Lead) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("lead alert panicked", "panic", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if delivered := h.notifier.SendLeadAlert(ctx, lead); !delivered {
		h.logger.Warn("lead alert not delivered", "city", lead.City)
	}
}

func (h *Handler) recoverPanic(w http.ResponseWriter) {
	if rec := recover(); rec != nil {
		h.logger.Error("lead submission failed unexpectedly", "panic", rec)
		h.metrics.ObserveLead("error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: h.fallbackMessage()})
	}
}

func (h *Handler) fallbackMessage() string {
	return fmt.Sprintf("Unable to process booking. Please call %s for immediate assistance.", h.mainPhone)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
