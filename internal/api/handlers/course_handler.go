package handlers

import (
	"net/http"
	"strconv"

	"course-marketplace/internal/domain"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/pkg/validator"

	"github.com/gin-gonic/gin"
)

// CourseHandler handles catalogue requests
type CourseHandler struct {
	courseService       serviceInterfaces.CourseService
	registrationService serviceInterfaces.RegistrationService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService serviceInterfaces.CourseService, registrationService serviceInterfaces.RegistrationService) *CourseHandler {
	return &CourseHandler{
		courseService:       courseService,
		registrationService: registrationService,
	}
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	query := serviceInterfaces.CourseQuery{
		Category:    domain.Category(c.Query("category")),
		Status:      domain.Status(c.Query("status")),
		CreatorID:   c.Query("creator_id"),
		CreatorType: domain.CreatorType(c.Query("creator_type")),
	}

	courses, err := h.courseService.ListCourses(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", courses)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req domain.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Course created successfully", course)
}

// UpdateCourse handles PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req domain.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	result, err := h.courseService.DeleteCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, deleteMessage("Course", result), result)
}

// ResetCourses handles PUT /api/v1/courses/reset
func (h *CourseHandler) ResetCourses(c *gin.Context) {
	var reqs []*domain.CreateCourseRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Code:    "invalid_body",
			Errors:  err.Error(),
		})
		return
	}

	for i, req := range reqs {
		if req == nil {
			continue
		}
		if err := validator.ValidateStruct(req); err != nil {
			c.JSON(http.StatusBadRequest, APIResponse{
				Success: false,
				Message: "Validation failed for course " + strconv.Itoa(i),
				Code:    "validation_failed",
				Errors:  validator.FormatValidationError(err),
			})
			return
		}
	}

	courses, err := h.courseService.ResetCourses(c.Request.Context(), reqs)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Catalogue reset successfully", courses)
}

// GetCourseRegistrations handles GET /api/v1/courses/:id/registrations
func (h *CourseHandler) GetCourseRegistrations(c *gin.Context) {
	registrations, err := h.registrationService.GetRegistrationsByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", registrations)
}

// ExportRoster handles GET /api/v1/courses/:id/registrations/export
func (h *CourseHandler) ExportRoster(c *gin.Context) {
	file, err := h.registrationService.ExportRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
