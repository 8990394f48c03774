package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/service"
)

type ImageHandler struct {
	svc       *service.ImageService
	maxUpload int64
	logger    *zap.Logger
}

func NewImageHandler(svc *service.ImageService, maxUpload int64, logger *zap.Logger) *ImageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageHandler{svc: svc, maxUpload: maxUpload, logger: logger}
}

// CreateImage godoc
// @Summary Upload an image
// @Tags image
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image_name formData string true "Image name"
// @Param image_file formData file true "png, jpg, jpeg or gif"
// @Success 201 {object} model.CreatedResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.AuthErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Router /api/image/create_image [post]
func (h *ImageHandler) CreateImage(c *gin.Context) {
	file, err := readFormFile(c, "image_file", h.maxUpload)
	if err != nil {
		writeArtifactError(c, h.logger, "Image", err)
		return
	}
	if file == nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "No image file part"})
		return
	}

	img, err := h.svc.Create(c.Request.Context(), GetAuthUser(c), c.PostForm("image_name"), service.ImageUpload{
		Filename: file.Filename,
		Data:     file.Data,
	})
	if err != nil {
		writeArtifactError(c, h.logger, "Image", err)
		return
	}

	c.JSON(http.StatusCreated, model.CreatedResponse{Message: "Image created successfully", ID: img.ID})
}

// UpdateImage godoc
// @Summary Replace an image and/or rename it
// @Tags image
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Image ID"
// @Param image_name formData string false "Image name"
// @Param image_file formData file false "png, jpg, jpeg or gif"
// @Success 200 {object} model.ImageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/image/update_image/{id} [put]
func (h *ImageHandler) UpdateImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, err := readFormFile(c, "image_file", h.maxUpload)
	if err != nil {
		writeArtifactError(c, h.logger, "Image", err)
		return
	}

	var upload *service.ImageUpload
	if file != nil {
		upload = &service.ImageUpload{Filename: file.Filename, Data: file.Data}
	}

	res, err := h.svc.Update(c.Request.Context(), GetAuthUser(c), id, optionalFormValue(c, "image_name"), upload)
	if err != nil {
		writeArtifactError(c, h.logger, "Image", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListImages godoc
// @Summary List the caller's images
// @Tags image
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ImageResponse
// @Failure 401 {object} model.AuthErrorResponse
// @Router /api/image/list_all_images [get]
func (h *ImageHandler) ListImages(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), GetAuthUser(c))
	if err != nil {
		writeArtifactError(c, h.logger, "Image", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetImage godoc
// @Summary Colour histogram and threshold mask of an image
// @Tags image
// @Produce json
// @Security BearerAuth
// @Param id path int true "Image ID"
// @Success 200 {object} model.ImageAnalysisResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/image/get_image/{id} [get]
func (h *ImageHandler) GetImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.Analyze(c.Request.Context(), GetAuthUser(c), id)
	if err != nil {
		writeArtifactError(c, h.logger, "Image", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteImage godoc
// @Summary Delete an image
// @Tags image
// @Produce json
// @Security BearerAuth
// @Param id path int true "Image ID"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/image/delete_image/{id} [delete]
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), GetAuthUser(c), id); err != nil {
		writeArtifactError(c, h.logger, "Image", err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Image deleted successfully"})
}
