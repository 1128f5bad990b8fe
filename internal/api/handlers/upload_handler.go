package handlers

import (
	"net/http"

	serviceInterfaces "course-marketplace/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

const uploadField = "image"

type UploadHandler struct {
	uploadService serviceInterfaces.UploadService
	maxBytes      int64
}

func NewUploadHandler(uploadService serviceInterfaces.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, maxBytes: maxBytes}
}

// UploadImage handles POST /api/v1/uploads
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "multipart field \"image\" is required",
			Code:    "invalid_body",
			Errors:  err.Error(),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	url, err := h.uploadService.UploadImage(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Image uploaded successfully", gin.H{"url": url})
}
