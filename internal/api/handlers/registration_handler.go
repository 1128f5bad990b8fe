package handlers

import (
	"net/http"

	"course-marketplace/internal/api/middleware"
	"course-marketplace/internal/domain"
	serviceInterfaces "course-marketplace/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

// RegistrationHandler handles course registration requests
type RegistrationHandler struct {
	registrationService serviceInterfaces.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService serviceInterfaces.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// CreateRegistration handles POST /api/v1/registrations.
// Students may only register themselves; admins may register anyone.
func (h *RegistrationHandler) CreateRegistration(c *gin.Context) {
	var req domain.CreateRegistrationRequest
	if !bindJSON(c, &req) {
		return
	}

	if !middleware.IsSelfOrAdmin(c, req.StudentID) {
		respondError(c, domain.ErrForbidden)
		return
	}

	registration, err := h.registrationService.CreateRegistration(c.Request.Context(), req.StudentID, req.CourseID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Registration created successfully", registration)
}

// GetStudentRegistrations handles GET /api/v1/registrations/student/:studentId
func (h *RegistrationHandler) GetStudentRegistrations(c *gin.Context) {
	registrations, err := h.registrationService.GetRegistrationsByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", registrations)
}

// UpdateRegistrationStatus handles PATCH /api/v1/registrations/:id/status
func (h *RegistrationHandler) UpdateRegistrationStatus(c *gin.Context) {
	var req domain.UpdateRegistrationStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	registration, err := h.registrationService.UpdateRegistrationStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Registration status updated", registration)
}

// DeleteRegistration handles DELETE /api/v1/registrations/:id
func (h *RegistrationHandler) DeleteRegistration(c *gin.Context) {
	id := c.Param("id")
	if err := h.registrationService.DeleteRegistration(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Registration deleted successfully", gin.H{"id": id})
}
