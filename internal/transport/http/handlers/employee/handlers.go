package employeehandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"snd/internal/domain/employee"
	"snd/internal/domain/rbac"
	"snd/internal/transport/http/api"
	"snd/internal/transport/http/middleware"
	"snd/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *employee.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(rbac.PermReadEmployee, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(rbac.PermReadEmployee, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(rbac.PermManageEmployee, h.Perms)).Post("/", h.handleCreate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	filter := employee.ListFilter{
		Department: r.URL.Query().Get("department"),
		Search:     r.URL.Query().Get("search"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}

	result, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileNumber         string  `json:"fileNumber"`
		FirstName          string  `json:"firstName"`
		LastName           string  `json:"lastName"`
		Email              string  `json:"email"`
		Designation        string  `json:"designation"`
		Department         string  `json:"department"`
		BasicSalary        float64 `json:"basicSalary"`
		FoodAllowance      float64 `json:"foodAllowance"`
		HousingAllowance   float64 `json:"housingAllowance"`
		TransportAllowance float64 `json:"transportAllowance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	e, err := h.Service.Create(r.Context(), employee.CreateInput{
		FileNumber:         payload.FileNumber,
		FirstName:          payload.FirstName,
		LastName:           payload.LastName,
		Email:              payload.Email,
		Designation:        payload.Designation,
		Department:         payload.Department,
		BasicSalary:        payload.BasicSalary,
		FoodAllowance:      payload.FoodAllowance,
		HousingAllowance:   payload.HousingAllowance,
		TransportAllowance: payload.TransportAllowance,
	})
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, e, middleware.GetRequestID(r.Context()))
}
