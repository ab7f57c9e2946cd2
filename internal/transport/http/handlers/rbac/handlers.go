package rbachandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"snd/internal/domain/rbac"
	"snd/internal/transport/http/api"
	"snd/internal/transport/http/middleware"
	"snd/internal/transport/http/shared"
)

type Handler struct {
	Service *rbac.Service
}

func NewHandler(service *rbac.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rbac", func(r chi.Router) {
		// Any authenticated user may ask about their own access.
		r.Get("/check", h.handleCheck)
		r.Get("/sections", h.handleSections)
		r.Get("/sections/{section}", h.handleSectionCheck)
		r.Get("/me/permissions", h.handleMyPermissions)

		manageRoles := middleware.RequirePermission(rbac.PermManageRole, h.Service)
		manageUsers := middleware.RequirePermission(rbac.PermManageUser, h.Service)
		r.With(middleware.RequirePermission(rbac.PermReadRole, h.Service)).Get("/roles", h.handleListRoles)
		r.With(manageRoles).Get("/permissions", h.handleListPermissions)
		r.With(manageRoles).Post("/permissions", h.handleCreatePermission)
		r.With(manageRoles).Put("/roles/{roleID}/permissions", h.handleAssignRolePermissions)
		r.With(manageUsers).Put("/users/{userID}/permissions", h.handleAssignUserPermissions)
		r.With(manageUsers).Get("/users/{userID}/permissions", h.handleUserPermissions)
	})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	action := r.URL.Query().Get("action")
	subject := r.URL.Query().Get("subject")
	if name := r.URL.Query().Get("permission"); name != "" {
		action, subject = rbac.Split(name)
	}

	decision, err := h.Service.CheckUserPermission(r.Context(), user.UserID, action, subject)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, decision, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSections(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	sections := h.Service.AccessibleSections(r.Context(), user.UserID)
	api.Success(w, map[string]any{"sections": sections}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSectionCheck(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	section := chi.URLParam(r, "section")
	allowed := h.Service.HasSectionPermission(r.Context(), user.UserID, section)
	api.Success(w, map[string]any{"section": section, "hasPermission": allowed}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	perms, err := h.Service.UserPermissions(r.Context(), user.UserID)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, perms, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUserPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Service.UserPermissions(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, perms, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"roles": roles}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.ListPermissions(r.Context(), r.URL.Query().Get("search"), page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePermission(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string `json:"name"`
		GuardName string `json:"guardName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	perm, err := h.Service.CreatePermission(r.Context(), payload.Name, payload.GuardName)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, perm, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssignRolePermissions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PermissionIDs []string `json:"permissionIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.AssignRolePermissions(r.Context(), chi.URLParam(r, "roleID"), payload.PermissionIDs); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "ok"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssignUserPermissions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PermissionIDs []string `json:"permissionIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.AssignUserPermissions(r.Context(), chi.URLParam(r, "userID"), payload.PermissionIDs); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "ok"}, middleware.GetRequestID(r.Context()))
}
