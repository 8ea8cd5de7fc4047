package extract

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-roaster/internal/shared/metrics"
	"resume-roaster/internal/shared/server/respond"
	"resume-roaster/internal/shared/telemetry"
	"resume-roaster/internal/shared/util"
)

// ReadUpload reads the multipart "file" field, bounded by MaxUploadSize.
func ReadUpload(c *gin.Context) (data []byte, fileName, mimeType string, err error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", "", err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", "", err
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, "", "", err
	}
	return data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), nil
}

// Handler serves the upload-to-text endpoint.
type Handler struct{}

// RegisterRoutes attaches extraction routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extract", h.extract)
}

func (h *Handler) extract(c *gin.Context) {
	data, fileName, mimeType, err := ReadUpload(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	text, err := FromBytes(c.Request.Context(), data, fileName, mimeType)
	if err != nil {
		metrics.IncExtractFailed()
		var extractErr *ExtractionError
		if errors.As(err, &extractErr) {
			telemetry.Warn("extract.failed", map[string]any{
				"file_name": fileName,
				"error":     err.Error(),
			})
			respond.Error(c, http.StatusUnprocessableEntity, "extraction_error", "Failed to read file. Please ensure it is a valid text or PDF file.", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		return
	}

	displayName, _ := util.SanitizeFileName(fileName)
	respond.OK(c, gin.H{
		"text":     text,
		"fileName": displayName,
	})
}
