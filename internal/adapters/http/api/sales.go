package api

import (
	"errors"
	"net/http"

	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/pkg/logger"
)

// GroupByParam is the query parameter selecting the grouping.
const GroupByParam = "groupBy"

// SalesHandler serves records and aggregates per grouping.
type SalesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(deps Dependencies, l logger.Logger) *SalesHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &SalesHandler{deps: deps, logger: l}
}

type summaryResponse struct {
	Group string `json:"group"`
	*aggregate.Summary
}

// HandleGetSales handles GET /api/sales?groupBy=<key>.
func (h *SalesHandler) HandleGetSales(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_sales"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	g, err := parseGroupBy(op, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ds, err := h.deps.Sales(r.Context(), g)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// HandleGetSummary handles GET /api/summary?groupBy=<key>.
func (h *SalesHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	g, err := parseGroupBy(op, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	summary, err := h.deps.Summary(r.Context(), g)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Group: g.String(), Summary: summary})
}

// parseGroupBy accepts exactly one groupBy value from the enumerated set.
func parseGroupBy(op string, r *http.Request) (grouping.Grouping, error) {
	values := r.URL.Query()[GroupByParam]
	if len(values) != 1 {
		return "", NewKind(op, ErrBadRequest)
	}
	g, err := grouping.Parse(values[0])
	if err != nil {
		return "", WrapKind(op, ErrBadRequest, err)
	}
	return g, nil
}

func (h *SalesHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, grouping.ErrUnknown) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if r.Context().Err() != nil {
		// The request ended before the data arrived; not a data failure.
		wrapped := Wrap(op, err)
		h.logger.Warn(r.Context(), "sales request abandoned", logger.Error(wrapped))
		writeError(w, http.StatusInternalServerError, "internal_error", wrapped)
		return
	}
	wrapped := WrapKind(op, ErrDataUnavailable, err)
	h.logger.Error(r.Context(), "sales request failed", logger.Error(wrapped))
	writeError(w, http.StatusInternalServerError, "internal_error", wrapped)
}
