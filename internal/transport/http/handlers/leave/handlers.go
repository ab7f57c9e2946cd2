package leavehandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"snd/internal/domain/leave"
	"snd/internal/domain/rbac"
	"snd/internal/transport/http/api"
	"snd/internal/transport/http/middleware"
	"snd/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *leave.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.With(middleware.RequirePermission(rbac.PermReadLeave, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(rbac.PermReadLeave, h.Perms)).Get("/{leaveID}", h.handleGet)
		r.With(middleware.RequirePermission(rbac.PermCreateLeave, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(rbac.PermApproveLeave, h.Perms)).Post("/{leaveID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(rbac.PermRejectLeave, h.Perms)).Post("/{leaveID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(rbac.PermApproveLeave, h.Perms)).Post("/{leaveID}/return", h.handleReturn)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	result, err := h.Service.List(r.Context(), leave.ListFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     leave.Status(r.URL.Query().Get("status")),
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
	lv, err := h.Service.Get(r.Context(), chi.URLParam(r, "leaveID"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, lv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID string `json:"employeeId"`
		LeaveType  string `json:"leaveType"`
		StartDate  string `json:"startDate"`
		EndDate    string `json:"endDate"`
		Reason     string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("leaveType", payload.LeaveType, "leave type is required")
	startDate, _ := v.Date("startDate", payload.StartDate)
	endDate, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", startDate, "endDate", endDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	lv, err := h.Service.Create(r.Context(), leave.CreateInput{
		EmployeeID: payload.EmployeeID,
		LeaveType:  payload.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     payload.Reason,
	})
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, lv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	lv, err := h.Service.Approve(r.Context(), chi.URLParam(r, "leaveID"), user.UserID)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, lv, middleware.GetRequestID(r.Context()))
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

	lv, err := h.Service.Reject(r.Context(), chi.URLParam(r, "leaveID"), user.UserID, payload.Reason)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, lv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		ReturnDate string `json:"returnDate"`
		Reason     string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	returnDate, _ := v.Date("returnDate", payload.ReturnDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	lv, err := h.Service.Return(r.Context(), leave.ReturnInput{
		LeaveID:    chi.URLParam(r, "leaveID"),
		ReturnDate: returnDate,
		ReturnedBy: user.UserID,
		Reason:     payload.Reason,
	})
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	// The requested values survive the return, so the caller can see at a
	// glance whether the employee came back early or late.
	api.Success(w, map[string]any{
		"leave":         lv,
		"isEarlyReturn": leave.IsEarlyReturn(lv.RequestedEndDate, returnDate),
		"isExtended":    leave.IsExtended(lv.RequestedEndDate, returnDate),
	}, middleware.GetRequestID(r.Context()))
}
