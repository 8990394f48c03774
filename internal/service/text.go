package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/analytica/backend/internal/model"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
)

var ErrAnalyzerUnavailable = errors.New("analysis backend not configured")

type TextRepo interface {
	CreateText(ctx context.Context, userID int64, headline, body, modelName string, vector []float32) (*model.Text, error)
	GetText(ctx context.Context, userID, id int64) (*model.Text, error)
	ListTexts(ctx context.Context, userID int64) ([]model.Text, error)
	DeleteText(ctx context.Context, userID, id int64) error
	SimilarTexts(ctx context.Context, userID, id int64, limit int) ([]model.SimilarTextResponse, error)
}

type EmbeddingClient interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

type TextAnalyzer interface {
	Summarize(ctx context.Context, text string) (string, error)
	ExtractKeywords(ctx context.Context, text string) ([][]string, error)
	AnalyzeSentiment(ctx context.Context, text string) (string, float64, error)
}

type Projector interface {
	RequestProjection(ctx context.Context, texts []string) (*model.ProjectionResponse, error)
}

type TextService struct {
	repo      TextRepo
	embedder  EmbeddingClient
	analyzer  TextAnalyzer
	projector Projector
	logger    *zap.Logger
}

// NewTextService wires the optional collaborators; any of embedder, analyzer
// and projector may be nil.
func NewTextService(repo TextRepo, embedder EmbeddingClient, analyzer TextAnalyzer, projector Projector, logger *zap.Logger) *TextService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextService{
		repo:      repo,
		embedder:  embedder,
		analyzer:  analyzer,
		projector: projector,
		logger:    logger,
	}
}

func (s *TextService) Create(ctx context.Context, user *model.AuthUser, headline, body string) (*model.Text, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: text_body is required", ErrInvalidInput)
	}

	var vector []float32
	var modelName string
	if s.embedder != nil {
		v, m, err := s.embedder.EmbedText(ctx, body)
		if err != nil {
			s.logger.Warn("embedding failed, storing text without vector", zap.Error(err))
		} else {
			vector, modelName = v, m
		}
	}

	text, err := s.repo.CreateText(ctx, user.ID, strings.TrimSpace(headline), body, modelName, vector)
	if err != nil {
		return nil, storageErr(err)
	}
	return text, nil
}

func (s *TextService) Get(ctx context.Context, user *model.AuthUser, id int64) (*model.Text, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	text, err := s.repo.GetText(ctx, user.ID, id)
	if err != nil {
		return nil, lookupErr(err)
	}
	return text, nil
}

func (s *TextService) List(ctx context.Context, user *model.AuthUser) ([]model.Text, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	texts, err := s.repo.ListTexts(ctx, user.ID)
	if err != nil {
		return nil, storageErr(err)
	}
	return texts, nil
}

func (s *TextService) Delete(ctx context.Context, user *model.AuthUser, id int64) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := s.repo.DeleteText(ctx, user.ID, id); err != nil {
		return lookupErr(err)
	}
	return nil
}

func (s *TextService) Similar(ctx context.Context, user *model.AuthUser, id int64, limit int) ([]model.SimilarTextResponse, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}
	if _, err := s.repo.GetText(ctx, user.ID, id); err != nil {
		return nil, lookupErr(err)
	}
	out, err := s.repo.SimilarTexts(ctx, user.ID, id, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	if out == nil {
		out = []model.SimilarTextResponse{}
	}
	return out, nil
}

func (s *TextService) Summarize(ctx context.Context, text string) (string, error) {
	text, err := s.requireAnalyzer(text)
	if err != nil {
		return "", err
	}
	return s.analyzer.Summarize(ctx, text)
}

func (s *TextService) ExtractKeywords(ctx context.Context, text string) ([][]string, error) {
	text, err := s.requireAnalyzer(text)
	if err != nil {
		return nil, err
	}
	return s.analyzer.ExtractKeywords(ctx, text)
}

func (s *TextService) AnalyzeSentiment(ctx context.Context, text string) (string, float64, error) {
	text, err := s.requireAnalyzer(text)
	if err != nil {
		return "", 0, err
	}
	return s.analyzer.AnalyzeSentiment(ctx, text)
}

// Project returns a 2-D embedding of texts; at least two non-empty texts are required.
func (s *TextService) Project(ctx context.Context, texts []string) (*model.ProjectionResponse, error) {
	cleaned := make([]string, 0, len(texts))
	for _, text := range texts {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) < 2 {
		return nil, fmt.Errorf("%w: at least two texts are required", ErrInvalidInput)
	}
	if s.projector == nil {
		return nil, ErrAnalyzerUnavailable
	}
	return s.projector.RequestProjection(ctx, cleaned)
}

func (s *TextService) requireAnalyzer(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if s.analyzer == nil {
		return "", ErrAnalyzerUnavailable
	}
	return text, nil
}
