package tracking

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/doctorbookings/homevisit-api/internal/notify"
	"github.com/doctorbookings/homevisit-api/internal/observability/metrics"
	"github.com/doctorbookings/homevisit-api/internal/ratelimit"
	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

// ErrorReport is a client-side form failure event. It never carries
// patient-identifying fields; the form sends only failure metadata.
type ErrorReport struct {
	ErrorType  string `json:"errorType"`
	City       string `json:"city"`
	Service    string `json:"service"`
	Timestamp  string `json:"timestamp"`
	Severity   string `json:"severity"`
	RetryCount int    `json:"retryCount"`
}

var validErrorTypes = map[string]struct{}{
	"network":    {},
	"validation": {},
	"server":     {},
	"timeout":    {},
	"unknown":    {},
}

// PhoneClickRequest is the body of a "Call Now" button click event.
type PhoneClickRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Source      string `json:"source"`
	UserAgent   string `json:"userAgent"`
}

var validClickSources = map[string]struct{}{
	"header": {},
	"sticky": {},
	"hero":   {},
	"cta":    {},
}

// Notifier delivers phone-click alerts to the business owner.
type Notifier interface {
	SendPhoneClickAlert(ctx context.Context, click notify.PhoneClick) bool
}

const notifyTimeout = 15 * time.Second

// Handler handles the client-side tracking endpoints: form error reports and
// phone button clicks.
type Handler struct {
	errLimiter   ratelimit.Limiter
	clickLimiter ratelimit.Limiter
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       *logging.Logger

	now func() time.Time
}

// NewHandler creates a tracking handler. clickLimiter is typically the lead
// endpoint's limiter, so clicks and submissions share one quota per client.
func NewHandler(errLimiter, clickLimiter ratelimit.Limiter, notifier Notifier, m *metrics.Metrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		errLimiter:   errLimiter,
		clickLimiter: clickLimiter,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// TrackError handles POST /api/error-tracking requests.
func (h *Handler) TrackError(w http.ResponseWriter, r *http.Request) {
	key := ratelimit.ClientKey(r)

	if !h.errLimiter.Admit(r.Context(), key, h.now()) {
		h.metrics.ObserveRateLimited("error-tracking")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Error tracking rate limit exceeded"})
		return
	}

	var report ErrorReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		h.logger.Error("failed to decode error report", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Error tracking system unavailable"})
		return
	}

	if _, ok := validErrorTypes[report.ErrorType]; !ok || report.City == "" || report.Timestamp == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid error tracking data"})
		return
	}

	if report.Service == "" {
		report.Service = "unknown"
	}
	if report.Severity == "" {
		report.Severity = "medium"
	}

	// Log for monitoring. Only failure metadata plus a truncated user agent
	// and client IP; no patient data exists on this endpoint.
	h.logger.Error("form submission error tracked",
		"error_type", report.ErrorType,
		"city", report.City,
		"service", report.Service,
		"timestamp", report.Timestamp,
		"severity", report.Severity,
		"retry_count", report.RetryCount,
		"user_agent", truncate(r.UserAgent(), 100),
		"client", truncate(key, 15),
	)

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Error tracked successfully"})
}

// TrackPhoneClick handles POST /api/phone-click requests. The alert is fired
// in the background; the caller always gets a success once the body parses.
func (h *Handler) TrackPhoneClick(w http.ResponseWriter, r *http.Request) {
	key := ratelimit.ClientKey(r)

	if !h.clickLimiter.Admit(r.Context(), key, h.now()) {
		h.metrics.ObserveRateLimited("phone-click")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please try again later."})
		return
	}

	var req PhoneClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid phone click data"})
		return
	}
	if req.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid phone click data"})
		return
	}
	if _, ok := validClickSources[req.Source]; !ok {
		req.Source = "unknown"
	}

	click := notify.PhoneClick{
		PhoneNumber: req.PhoneNumber,
		Source:      req.Source,
		UserAgent:   truncate(req.UserAgent, 100),
		Timestamp:   h.now().UTC(),
	}

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("phone click alert panicked", "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if delivered := h.notifier.SendPhoneClickAlert(ctx, click); !delivered {
			h.logger.Warn("phone click alert not delivered", "source", click.Source)
		}
	}()

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
