package handlers

import (
	"net/http"

	"course-marketplace/internal/domain"
	serviceInterfaces "course-marketplace/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

type SchoolHandler struct {
	schoolService serviceInterfaces.SchoolService
}

func NewSchoolHandler(schoolService serviceInterfaces.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolService: schoolService}
}

func (h *SchoolHandler) ListSchools(c *gin.Context) {
	schools, err := h.schoolService.ListSchools(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", schools)
}

func (h *SchoolHandler) GetSchool(c *gin.Context) {
	school, err := h.schoolService.GetSchool(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", school)
}

func (h *SchoolHandler) GetSchoolByOwner(c *gin.Context) {
	school, err := h.schoolService.GetSchoolByOwner(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", school)
}

func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	var req domain.CreateSchoolRequest
	if !bindJSON(c, &req) {
		return
	}

	school, err := h.schoolService.CreateSchool(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "School created successfully", school)
}

func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	var req domain.UpdateSchoolRequest
	if !bindJSON(c, &req) {
		return
	}

	school, err := h.schoolService.UpdateSchool(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "School updated successfully", school)
}

func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	result, err := h.schoolService.DeleteSchool(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, deleteMessage("School", result), result)
}
