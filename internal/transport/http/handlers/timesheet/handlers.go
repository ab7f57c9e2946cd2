package timesheethandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"snd/internal/domain/rbac"
	"snd/internal/domain/timesheet"
	"snd/internal/transport/http/api"
	"snd/internal/transport/http/middleware"
	"snd/internal/transport/http/shared"
)

// stagePermissions maps each approval stage to the permission that guards
// it. Keeping the map here leaves the domain package free of authorization
// concerns.
var stagePermissions = map[timesheet.Stage]string{
	timesheet.StageForeman:  rbac.PermApproveTimesheetForeman,
	timesheet.StageIncharge: rbac.PermApproveTimesheetIncharge,
	timesheet.StageChecking: rbac.PermApproveTimesheetChecking,
	timesheet.StageManager:  rbac.PermApproveTimesheetManager,
}

type Handler struct {
	Service *timesheet.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *timesheet.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timesheets", func(r chi.Router) {
		r.With(middleware.RequirePermission(rbac.PermReadTimesheet, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(rbac.PermReadTimesheet, h.Perms)).Get("/{timesheetID}", h.handleGet)
		r.With(middleware.RequirePermission(rbac.PermCreateTimesheet, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(rbac.PermCreateTimesheet, h.Perms)).Post("/{timesheetID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(rbac.PermUpdateTimesheet, h.Perms)).Patch("/{timesheetID}/hours", h.handleUpdateHours)
		r.With(middleware.RequirePermission(rbac.PermRejectTimesheet, h.Perms)).Post("/{timesheetID}/reject", h.handleReject)

		// Each stage route carries its own permission; the handler never
		// re-derives the stage from the body.
		for stage, permission := range stagePermissions {
			stage := stage
			r.With(middleware.RequirePermission(permission, h.Perms)).
				Post("/{timesheetID}/approve/"+string(stage), h.handleApprove(stage))
			r.With(middleware.RequirePermission(permission, h.Perms)).
				Post("/bulk-approve/"+string(stage), h.handleBulkApprove(stage))
		}
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	filter := timesheet.ListFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     timesheet.Status(r.URL.Query().Get("status")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if from, err := shared.ParseDate(r.URL.Query().Get("from")); err == nil && !from.IsZero() {
		filter.From = &from
	}
	if to, err := shared.ParseDate(r.URL.Query().Get("to")); err == nil && !to.IsZero() {
		filter.To = &to
	}

	result, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Service.Get(r.Context(), chi.URLParam(r, "timesheetID"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, ts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID    string  `json:"employeeId"`
		AssignmentID  string  `json:"assignmentId"`
		Date          string  `json:"date"`
		HoursWorked   float64 `json:"hoursWorked"`
		OvertimeHours float64 `json:"overtimeHours"`
		Notes         string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	date, _ := v.Date("date", payload.Date)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	ts, err := h.Service.Create(r.Context(), timesheet.CreateInput{
		EmployeeID:    payload.EmployeeID,
		AssignmentID:  payload.AssignmentID,
		Date:          date,
		HoursWorked:   payload.HoursWorked,
		OvertimeHours: payload.OvertimeHours,
		Notes:         payload.Notes,
	})
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, ts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	ts, err := h.Service.Submit(r.Context(), chi.URLParam(r, "timesheetID"), user.UserID)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, ts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(stage timesheet.Stage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
			return
		}

		var payload struct {
			Notes string `json:"notes"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
				return
			}
		}

		ts, err := h.Service.ApproveAtStage(r.Context(), chi.URLParam(r, "timesheetID"), stage, user.UserID, payload.Notes)
		if err != nil {
			api.FailErr(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, ts, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleBulkApprove(stage timesheet.Stage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
			return
		}

		var payload struct {
			TimesheetIDs []string `json:"timesheetIds"`
			Notes        string   `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}

		results, err := h.Service.BulkApprove(r.Context(), payload.TimesheetIDs, stage, user.UserID, payload.Notes)
		if err != nil {
			api.FailErr(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]any{"results": results}, middleware.GetRequestID(r.Context()))
	}
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

	ts, err := h.Service.Reject(r.Context(), chi.URLParam(r, "timesheetID"), user.UserID, payload.Reason)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, ts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateHours(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		HoursWorked   float64 `json:"hoursWorked"`
		OvertimeHours float64 `json:"overtimeHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	ts, err := h.Service.UpdateHours(r.Context(), chi.URLParam(r, "timesheetID"), user.UserID, payload.HoursWorked, payload.OvertimeHours)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, ts, middleware.GetRequestID(r.Context()))
}
