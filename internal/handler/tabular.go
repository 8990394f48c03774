package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/service"
)

type TabularHandler struct {
	svc       *service.TabularService
	maxUpload int64
	logger    *zap.Logger
}

func NewTabularHandler(svc *service.TabularService, maxUpload int64, logger *zap.Logger) *TabularHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TabularHandler{svc: svc, maxUpload: maxUpload, logger: logger}
}

// CreateTabular godoc
// @Summary Upload a CSV file
// @Tags tabular
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param tabular_name formData string true "Dataset name"
// @Param tabular_file formData file true "CSV with a header row"
// @Success 201 {object} model.CreatedResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Router /api/tabular/create_tabular [post]
func (h *TabularHandler) CreateTabular(c *gin.Context) {
	file, err := readFormFile(c, "tabular_file", h.maxUpload)
	if err != nil {
		writeArtifactError(c, h.logger, "Tabular data", err)
		return
	}
	if file == nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "No tabular file part"})
		return
	}

	tab, err := h.svc.Create(c.Request.Context(), GetAuthUser(c), c.PostForm("tabular_name"), file.Data)
	if err != nil {
		writeArtifactError(c, h.logger, "Tabular data", err)
		return
	}
	c.JSON(http.StatusCreated, model.CreatedResponse{Message: "Tabular data created successfully", ID: tab.ID})
}

// UpdateTabular godoc
// @Summary Replace a CSV file and/or rename it
// @Tags tabular
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tabular ID"
// @Param tabular_name formData string false "Dataset name"
// @Param tabular_file formData file false "CSV with a header row"
// @Success 200 {object} model.TabularResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/tabular/update_tabular/{id} [put]
func (h *TabularHandler) UpdateTabular(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, err := readFormFile(c, "tabular_file", h.maxUpload)
	if err != nil {
		writeArtifactError(c, h.logger, "Tabular data", err)
		return
	}

	var data []byte
	if file != nil {
		data = file.Data
		if data == nil {
			data = []byte{}
		}
	}

	res, err := h.svc.Update(c.Request.Context(), GetAuthUser(c), id, optionalFormValue(c, "tabular_name"), data)
	if err != nil {
		writeArtifactError(c, h.logger, "Tabular data", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListTabular godoc
// @Summary List the caller's CSV files
// @Tags tabular
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.TabularResponse
// @Router /api/tabular/list_all_tabular [get]
func (h *TabularHandler) ListTabular(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), GetAuthUser(c))
	if err != nil {
		writeArtifactError(c, h.logger, "Tabular data", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetTabular godoc
// @Summary Descriptive statistics and outlier rows of a CSV file
// @Tags tabular
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tabular ID"
// @Success 200 {object} model.TabularAnalysisResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/tabular/get_tabular/{id} [get]
func (h *TabularHandler) GetTabular(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.Analyze(c.Request.Context(), GetAuthUser(c), id)
	if err != nil {
		writeArtifactError(c, h.logger, "Tabular data", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteTabular godoc
// @Summary Delete a CSV file
// @Tags tabular
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tabular ID"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/tabular/delete_tabular/{id} [delete]
func (h *TabularHandler) DeleteTabular(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), GetAuthUser(c), id); err != nil {
		writeArtifactError(c, h.logger, "Tabular data", err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Tabular data deleted successfully"})
}
