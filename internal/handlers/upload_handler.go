package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classbridge/lms-service/internal/storage"
	"github.com/classbridge/lms-service/internal/utils"
)

// maxUploadSize caps a single uploaded file at 50 MiB.
const maxUploadSize = 50 << 20

type UploadHandler struct {
	BaseHandler
	store storage.BlobStore
}

func NewUploadHandler(store storage.BlobStore, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
	}
}

// UploadFile stores one multipart file and returns its URL
// @Summary Upload a file
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid upload",
			Details: "multipart field 'file' is required",
		})
		return
	}
	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File too large",
			Details: fmt.Sprintf("limit is %d bytes", maxUploadSize),
		})
		return
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid upload",
			Details: err.Error(),
		})
		return
	}
	defer src.Close()

	path := fmt.Sprintf("%s/%s/%s%s",
		userID,
		time.Now().UTC().Format("2006-01"),
		uuid.New().String(),
		filepath.Ext(header.Filename))

	url, err := h.store.Upload(c.Request.Context(), src, path, nil)
	if err != nil {
		h.LogError(c, "Upload failed", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to store file"})
		return
	}

	h.LogRequest(c, "File uploaded", "user_id", userID, "size", header.Size, "url", url)
	c.JSON(http.StatusCreated, gin.H{
		"url":      url,
		"filename": header.Filename,
		"size":     header.Size,
	})
}
