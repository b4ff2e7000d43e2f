package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"hogar/internal/core"
	"hogar/internal/log"
)

// defaultRangeMonths is used for range views without an explicit length.
const defaultRangeMonths = 3

func householdFrom(r *http.Request) core.HouseholdContext {
	return core.HouseholdContext{
		HouseholdID: sanitizeInput(r.PathValue("household")),
		MemberID:    sanitizeInput(r.Header.Get("X-Member-ID")),
	}
}

// parseWindow reads view, month and range from the query. The month
// defaults to the current one.
func (s *Server) parseWindow(r *http.Request) (core.Window, error) {
	q := r.URL.Query()
	month := strings.TrimSpace(q.Get("month"))
	if month == "" {
		month = core.MonthOf(s.now()).String()
	}
	length := defaultRangeMonths
	if v := strings.TrimSpace(q.Get("range")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Window{}, core.ErrInvalidWindow
		}
		length = n
	}
	return core.ParseWindow(strings.TrimSpace(q.Get("view")), month, length)
}

// handleBudget serves GET /api/households/{household}/budget.
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	hh := householdFrom(r)
	window, err := s.parseWindow(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	report, err := s.reports.Report(r.Context(), hh, window)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type openPeriodRequest struct {
	Month string `json:"month"`
	// SeedZero overrides the server default for zero-line seeding.
	SeedZero *bool `json:"seedZero,omitempty"`
}

type periodResponse struct {
	ID      int64             `json:"id"`
	Month   core.MonthKey     `json:"month"`
	Status  core.PeriodStatus `json:"status"`
	Created bool              `json:"created"`
}

// handleOpenPeriod serves POST /api/households/{household}/periods. It is
// idempotent: an existing period is returned with 200, a new one with 201.
func (s *Server) handleOpenPeriod(w http.ResponseWriter, r *http.Request) {
	hh := householdFrom(r)
	var req openPeriodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := core.ParseMonthKey(req.Month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	seedZero := s.seedZero
	if req.SeedZero != nil {
		seedZero = *req.SeedZero
	}

	period, created, err := s.periods.EnsurePeriod(r.Context(), hh.HouseholdID, month, seedZero)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		log.FromContext(r.Context()).InfoContext(r.Context(), "Budget period opened via API",
			log.FieldHousehold, hh.HouseholdID,
			log.FieldMonth, month.String())
	}
	writeJSON(w, status, periodResponse{ID: period.ID, Month: period.Month, Status: period.Status, Created: created})
}

type budgetLineRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Scope  core.Scope       `json:"scope,omitempty"`
}

func lineTarget(r *http.Request) (core.MonthKey, string, error) {
	month, err := core.ParseMonthKey(r.PathValue("month"))
	if err != nil {
		return core.MonthKey{}, "", err
	}
	return month, sanitizeInput(r.PathValue("category")), nil
}

// handleSetLine serves PUT .../periods/{month}/lines/{category}. A zero
// amount is stored as an explicit zero budget.
func (s *Server) handleSetLine(w http.ResponseWriter, r *http.Request) {
	hh := householdFrom(r)
	month, categoryID, err := lineTarget(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var req budgetLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount == nil {
		writeDomainError(w, r, core.ErrInvalidAmount)
		return
	}
	line := core.BudgetLine{CategoryID: categoryID, Scope: req.Scope, Amount: *req.Amount}
	if line.Scope == "" {
		line.Scope = core.ScopeShared
	}

	if err := s.periods.SetBudgetLine(r.Context(), hh.HouseholdID, month, line); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearLine serves DELETE .../periods/{month}/lines/{category}; the
// category default applies again afterwards.
func (s *Server) handleClearLine(w http.ResponseWriter, r *http.Request) {
	hh := householdFrom(r)
	month, categoryID, err := lineTarget(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	scope := core.Scope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = core.ScopeShared
	}
	if !scope.Valid() {
		writeDomainError(w, r, core.ErrUnknownScope)
		return
	}

	if err := s.periods.ClearBudgetLine(r.Context(), hh.HouseholdID, month, categoryID, scope); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
