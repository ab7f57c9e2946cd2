package incrementhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"snd/internal/domain/increment"
	"snd/internal/domain/rbac"
	"snd/internal/transport/http/api"
	"snd/internal/transport/http/middleware"
	"snd/internal/transport/http/shared"
)

type Handler struct {
	Service *increment.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *increment.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salary-increments", func(r chi.Router) {
		r.With(middleware.RequirePermission(rbac.PermReadSalaryIncrement, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(rbac.PermReadSalaryIncrement, h.Perms)).Get("/{incrementID}", h.handleGet)
		r.With(middleware.RequirePermission(rbac.PermCreateSalaryIncrement, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(rbac.PermApproveSalaryIncrement, h.Perms)).Post("/{incrementID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(rbac.PermRejectSalaryIncrement, h.Perms)).Post("/{incrementID}/reject", h.handleReject)
		// Applying mutates the employee record, so it carries its own
		// permission separate from approval.
		r.With(middleware.RequirePermission(rbac.PermApplySalaryIncrement, h.Perms)).Post("/{incrementID}/apply", h.handleApply)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	result, err := h.Service.List(r.Context(), increment.ListFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     increment.Status(r.URL.Query().Get("status")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	inc, err := h.Service.Get(r.Context(), chi.URLParam(r, "incrementID"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"increment":       inc,
		"totalCurrent":    inc.TotalCurrent(),
		"totalNew":        inc.TotalNew(),
		"increasePercent": inc.IncreasePercent(),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID            string  `json:"employeeId"`
		NewBaseSalary         float64 `json:"newBaseSalary"`
		NewFoodAllowance      float64 `json:"newFoodAllowance"`
		NewHousingAllowance   float64 `json:"newHousingAllowance"`
		NewTransportAllowance float64 `json:"newTransportAllowance"`
		Reason                string  `json:"reason"`
		EffectiveDate         string  `json:"effectiveDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("reason", payload.Reason, "reason is required")
	effectiveDate, _ := v.Date("effectiveDate", payload.EffectiveDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	inc, err := h.Service.Create(r.Context(), increment.CreateInput{
		EmployeeID:            payload.EmployeeID,
		NewBaseSalary:         payload.NewBaseSalary,
		NewFoodAllowance:      payload.NewFoodAllowance,
		NewHousingAllowance:   payload.NewHousingAllowance,
		NewTransportAllowance: payload.NewTransportAllowance,
		Reason:                payload.Reason,
		EffectiveDate:         effectiveDate,
		RequestedBy:           user.UserID,
	})
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, inc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	inc, err := h.Service.Approve(r.Context(), chi.URLParam(r, "incrementID"), user.UserID)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, inc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	inc, err := h.Service.Reject(r.Context(), chi.URLParam(r, "incrementID"), user.UserID, payload.Reason)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, inc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	inc, err := h.Service.Apply(r.Context(), chi.URLParam(r, "incrementID"), user.UserID)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, inc, middleware.GetRequestID(r.Context()))
}
