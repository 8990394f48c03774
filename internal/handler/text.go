package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/service"
)

type TextHandler struct {
	svc    *service.TextService
	logger *zap.Logger
}

func NewTextHandler(svc *service.TextService, logger *zap.Logger) *TextHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextHandler{svc: svc, logger: logger}
}

func toTextResponse(t model.Text) model.TextResponse {
	return model.TextResponse{
		ID:        t.ID,
		Headline:  t.Headline,
		TextBody:  t.Body,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateText godoc
// @Summary Store a text document
// @Tags text
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TextCreateRequest true "Headline and body"
// @Success 201 {object} model.CreatedResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/text/create_text [post]
func (h *TextHandler) CreateText(c *gin.Context) {
	var req model.TextCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	text, err := h.svc.Create(c.Request.Context(), GetAuthUser(c), req.Headline, req.TextBody)
	if err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	c.JSON(http.StatusCreated, model.CreatedResponse{Message: "Text created successfully", ID: text.ID})
}

// ListTexts godoc
// @Summary List the caller's text documents
// @Tags text
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.TextResponse
// @Router /api/text/list_all_texts [get]
func (h *TextHandler) ListTexts(c *gin.Context) {
	texts, err := h.svc.List(c.Request.Context(), GetAuthUser(c))
	if err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	out := make([]model.TextResponse, 0, len(texts))
	for _, t := range texts {
		out = append(out, toTextResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

// GetText godoc
// @Summary Get a text document
// @Tags text
// @Produce json
// @Security BearerAuth
// @Param id path int true "Text ID"
// @Success 200 {object} model.TextResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/text/get_text/{id} [get]
func (h *TextHandler) GetText(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	text, err := h.svc.Get(c.Request.Context(), GetAuthUser(c), id)
	if err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	c.JSON(http.StatusOK, toTextResponse(*text))
}

// DeleteText godoc
// @Summary Delete a text document
// @Tags text
// @Produce json
// @Security BearerAuth
// @Param id path int true "Text ID"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/text/delete_text/{id} [delete]
func (h *TextHandler) DeleteText(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), GetAuthUser(c), id); err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Text deleted successfully"})
}

// SimilarTexts godoc
// @Summary Nearest stored documents by embedding distance
// @Tags text
// @Produce json
// @Security BearerAuth
// @Param id path int true "Text ID"
// @Param limit query int false "Maximum results (default 5)"
// @Success 200 {array} model.SimilarTextResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/text/similar_texts/{id} [get]
func (h *TextHandler) SimilarTexts(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	res, err := h.svc.Similar(c.Request.Context(), GetAuthUser(c), id, limit)
	if err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SummarizeText godoc
// @Summary Summarize a text
// @Tags text
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TextRequest true "Text"
// @Success 200 {object} model.SummaryResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/text/summarize_text [post]
func (h *TextHandler) SummarizeText(c *gin.Context) {
	req, ok := bindTextRequest(c)
	if !ok {
		return
	}
	summary, err := h.svc.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	c.JSON(http.StatusOK, model.SummaryResponse{Summary: summary})
}

// ExtractKeywords godoc
// @Summary Topic keywords of a text
// @Tags text
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TextRequest true "Text"
// @Success 200 {object} model.KeywordsResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/text/extract_keywords [post]
func (h *TextHandler) ExtractKeywords(c *gin.Context) {
	req, ok := bindTextRequest(c)
	if !ok {
		return
	}
	keywords, err := h.svc.ExtractKeywords(c.Request.Context(), req.Text)
	if err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	c.JSON(http.StatusOK, model.KeywordsResponse{Keywords: keywords})
}

// AnalyzeSentiment godoc
// @Summary Sentiment of a text
// @Tags text
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TextRequest true "Text"
// @Success 200 {object} model.SentimentResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/text/analyze_sentiment [post]
func (h *TextHandler) AnalyzeSentiment(c *gin.Context) {
	req, ok := bindTextRequest(c)
	if !ok {
		return
	}
	label, confidence, err := h.svc.AnalyzeSentiment(c.Request.Context(), req.Text)
	if err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	c.JSON(http.StatusOK, model.SentimentResponse{Sentiment: label, Confidence: confidence})
}

// TSNEDisplay godoc
// @Summary 2-D t-SNE projection of several texts
// @Tags text
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TextsRequest true "At least two texts"
// @Success 200 {object} model.ProjectionResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/text/tsne_display [post]
func (h *TextHandler) TSNEDisplay(c *gin.Context) {
	var req model.TextsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}
	res, err := h.svc.Project(c.Request.Context(), req.Texts)
	if err != nil {
		writeArtifactError(c, h.logger, "Text", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func bindTextRequest(c *gin.Context) (model.TextRequest, bool) {
	var req model.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return req, false
	}
	return req, true
}
