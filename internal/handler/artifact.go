package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/analytica/backend/internal/analysis"
	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/service"
)

var errUploadTooLarge = errors.New("uploaded file too large")

// multipartOverhead leaves room for boundaries and text fields around the file part.
const multipartOverhead = 64 << 10

// uploadedFile is a multipart file part read fully into memory.
type uploadedFile struct {
	Filename string
	Data     []byte
}

// readFormFile returns nil without error when the part is absent.
func readFormFile(c *gin.Context, field string, maxBytes int64) (*uploadedFile, error) {
	if maxBytes > 0 {
		limit := maxBytes + multipartOverhead
		if c.Request.ContentLength > limit {
			return nil, errUploadTooLarge
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, errUploadTooLarge
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, errUploadTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &uploadedFile{Filename: header.Filename, Data: data}, nil
}

// optionalFormValue distinguishes an absent field from an empty one.
func optionalFormValue(c *gin.Context, field string) *string {
	if value, ok := c.GetPostForm(field); ok {
		return &value
	}
	return nil
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// writeArtifactError maps service errors for the image, tabular and text routes.
func writeArtifactError(c *gin.Context, logger *zap.Logger, noun string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, errUploadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: noun + " not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		abortAuth(c, http.StatusUnauthorized, "Invalid token", "invalid_token")
	case errors.Is(err, service.ErrAnalyzerUnavailable):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: service.ErrAnalyzerUnavailable.Error()})
	case errors.Is(err, service.ErrPayloadMissing):
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: noun + " payload missing"})
	case errors.Is(err, analysis.ErrInvalidCSV):
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Error reading CSV: " + err.Error()})
	default:
		logger.Error("artifact request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
	}
}
