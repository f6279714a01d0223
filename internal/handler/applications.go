package handler

import (
	"log/slog"
	"net/http"

	"workmarket/internal/httputil"
	"workmarket/internal/service"
)

// ApplicationHandler exposes the allocation engine's operations.
type ApplicationHandler struct {
	applications *service.ApplicationService
	logger       *slog.Logger
}

func NewApplicationHandler(applications *service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

// CreateApplication handles POST /api/applications
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	freelancerID := callerID(r)
	if freelancerID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing caller identity")
		return
	}

	var req service.CreateApplicationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	application, err := h.applications.CreateApplication(r.Context(), freelancerID, req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, application)
}

// GetApplication handles GET /api/applications/{id}
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	application, err := h.applications.GetApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, application)
}

type statusUpdate struct {
	Status string `json:"status"`
}

// UpdateApplicationStatus handles PATCH /api/applications/{id}/status
func (h *ApplicationHandler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdate
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	application, err := h.applications.UpdateApplicationStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, application)
}

// ListByOrder handles GET /api/orders/{id}/applications
func (h *ApplicationHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	applications, err := h.applications.GetApplicationsByOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, applications)
}

// ListMine handles GET /api/applications/mine
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	freelancerID := callerID(r)
	if freelancerID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing caller identity")
		return
	}

	applications, err := h.applications.GetApplicationsByFreelancer(r.Context(), freelancerID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, applications)
}

// AvailableSpecializations handles GET /api/orders/{id}/specializations/available
func (h *ApplicationHandler) AvailableSpecializations(w http.ResponseWriter, r *http.Request) {
	available, err := h.applications.GetAvailableSpecializations(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, available)
}

// ValidateEligibility handles GET /api/orders/{id}/eligibility
func (h *ApplicationHandler) ValidateEligibility(w http.ResponseWriter, r *http.Request) {
	freelancerID := callerID(r)
	if freelancerID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing caller identity")
		return
	}
	vacancyID := r.URL.Query().Get("vacancy_id")

	result, err := h.applications.ValidateApplicationEligibility(r.Context(), freelancerID, r.PathValue("id"), vacancyID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
