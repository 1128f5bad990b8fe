package handlers

import (
	"net/http"

	"course-marketplace/internal/domain"
	serviceInterfaces "course-marketplace/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

type InstructorHandler struct {
	instructorService serviceInterfaces.InstructorService
}

func NewInstructorHandler(instructorService serviceInterfaces.InstructorService) *InstructorHandler {
	return &InstructorHandler{instructorService: instructorService}
}

func (h *InstructorHandler) ListInstructors(c *gin.Context) {
	instructors, err := h.instructorService.ListInstructors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", instructors)
}

func (h *InstructorHandler) GetInstructor(c *gin.Context) {
	instructor, err := h.instructorService.GetInstructor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", instructor)
}

func (h *InstructorHandler) GetInstructorByUser(c *gin.Context) {
	instructor, err := h.instructorService.GetInstructorByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", instructor)
}

func (h *InstructorHandler) CreateInstructor(c *gin.Context) {
	var req domain.CreateInstructorRequest
	if !bindJSON(c, &req) {
		return
	}

	instructor, err := h.instructorService.CreateInstructor(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Instructor profile created successfully", instructor)
}

func (h *InstructorHandler) UpdateInstructor(c *gin.Context) {
	var req domain.UpdateInstructorRequest
	if !bindJSON(c, &req) {
		return
	}

	instructor, err := h.instructorService.UpdateInstructor(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Instructor profile updated successfully", instructor)
}

func (h *InstructorHandler) DeleteInstructor(c *gin.Context) {
	result, err := h.instructorService.DeleteInstructor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, deleteMessage("Instructor", result), result)
}
