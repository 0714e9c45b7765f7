package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"paydash/internal/omie"
	"paydash/internal/reconcile"
)

// Querier answers one dashboard query. Satisfied by *reconcile.Service.
type Querier interface {
	Query(ctx context.Context, window reconcile.Window, supplierIDs []int64) (*reconcile.Summary, error)
	QueryDueDates(ctx context.Context, window reconcile.Window, supplierIDs []int64) (*reconcile.Summary, error)
}

// DashboardHandler serves the dashboard JSON endpoints.
type DashboardHandler struct {
	svc   Querier
	rules reconcile.SupplierRules
	now   func() time.Time
}

// NewDashboardHandler creates the handler. now defaults to time.Now when nil.
func NewDashboardHandler(svc Querier, rules reconcile.SupplierRules, now func() time.Time) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{svc: svc, rules: rules, now: now}
}

// Dashboard handles GET /api/dashboard. Query parameters: from and to as
// DD/MM/YYYY (both default to the current month when either is absent),
// suppliers as a comma-separated list of numeric codes, and basis selecting
// the record source: "payments" (default, cash-flow movements by payment
// date) or "due" (accounts-payable records by due date).
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")

	var window reconcile.Window
	if from == "" || to == "" {
		window = reconcile.CurrentMonth(h.now())
	} else {
		var err error
		if window, err = reconcile.ParseWindow(from, to); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date_range", err.Error())
			return
		}
	}

	supplierIDs, err := parseSupplierIDs(q.Get("suppliers"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_suppliers", err.Error())
		return
	}

	basis := q.Get("basis")
	query := h.svc.Query
	switch basis {
	case "", "payments":
		basis = "payments"
	case "due":
		query = h.svc.QueryDueDates
	default:
		writeError(w, http.StatusBadRequest, "invalid_basis", `basis must be "payments" or "due"`)
		return
	}

	log.Info().
		Str("from", window.StartText()).
		Str("to", window.EndText()).
		Str("basis", basis).
		Ints64("suppliers", supplierIDs).
		Msg("Dashboard query received")

	summary, err := query(r.Context(), window, supplierIDs)
	if err != nil {
		status, code, message := classifyError(err)
		log.Error().
			Err(err).
			Int("status", status).
			Msg("Dashboard query failed")
		writeError(w, status, code, message)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// supplierEntry is one row of the supplier listing.
type supplierEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Suppliers handles GET /api/suppliers: the configured supplier directory the
// frontend offers as filter choices.
func (h *DashboardHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	entries := make([]supplierEntry, 0, len(h.rules.Names))
	for id, name := range h.rules.Names {
		entries = append(entries, supplierEntry{ID: id, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	writeJSON(w, http.StatusOK, entries)
}

// classifyError maps pipeline failures onto HTTP statuses. The mapping is
// fixed: vendor unreachable or slow → 503, vendor business fault → 502,
// anything else → 500.
func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, omie.ErrTimeout), errors.Is(err, omie.ErrTransport):
		return http.StatusServiceUnavailable, "upstream_unavailable", "The ERP did not respond in time. Try again shortly."
	case errors.Is(err, omie.ErrRemoteFault):
		msg := omie.FaultMessage(err)
		if msg == "" {
			msg = "The ERP rejected the request."
		}
		return http.StatusBadGateway, "upstream_fault", msg
	default:
		return http.StatusInternalServerError, "internal_error", "An unexpected error occurred."
	}
}

func parseSupplierIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.New("suppliers must be comma-separated numeric codes")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func requestLogger(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
