package reportshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"snd/internal/domain/rbac"
	"snd/internal/domain/reports"
	"snd/internal/transport/http/api"
	"snd/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *reports.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(rbac.PermExportLeave, h.Perms)).
			Get("/leaves/{leaveID}/pdf", h.handleLeavePDF)
	})
}

func (h *Handler) handleLeavePDF(w http.ResponseWriter, r *http.Request) {
	path, err := h.Service.LeaveReportPDF(r.Context(), chi.URLParam(r, "leaveID"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="leave-`+chi.URLParam(r, "leaveID")+`.pdf"`)
	http.ServeFile(w, r, path)
}
