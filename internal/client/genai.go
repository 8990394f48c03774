// Gemini(genai) 기반 텍스트 분석 클라이언트 정의
//
// 환경변수:
//   - AI_API_KEY: Gemini API Key
//   - AI_TEXT_MODEL: 요약/키워드/감성 분석 모델 (기본값 gemini-2.0-flash)
//   - AI_EMBEDDING_MODEL: 임베딩 모델 (기본값 text-embedding-004)

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/analytica/backend/internal/config"
)

var ErrEmptyModelResponse = errors.New("empty model response")

// GenAIClient 구조체 정의
type GenAIClient struct {
	client         *genai.Client
	textModel      string
	embeddingModel string
}

// GenAIClient 객체 생성. AI_API_KEY가 없으면 에러 반환
func NewGenAIClient(ctx context.Context, cfg config.AIConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GenAIClient{
		client:         client,
		textModel:      cfg.TextModel,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

func (c *GenAIClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	res, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, c.embeddingModel, err
	}
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, c.embeddingModel, fmt.Errorf("empty embedding result")
	}
	return res.Embeddings[0].Values, c.embeddingModel, nil
}

const (
	summarizePrompt = `Summarize the following text in at most three sentences. ` +
		`Reply as JSON: {"summary": "..."}.`
	keywordsPrompt = `Group the main topics of the following text. For each topic list up to five ` +
		`representative words. Reply as JSON: {"keywords": [["word", ...], ...]}.`
	sentimentPrompt = `Classify the sentiment of the following text as POSITIVE or NEGATIVE and give a ` +
		`confidence between 0 and 1. Reply as JSON: {"sentiment": "POSITIVE", "confidence": 0.0}.`
)

func (c *GenAIClient) Summarize(ctx context.Context, text string) (string, error) {
	raw, err := c.generateJSON(ctx, summarizePrompt, text)
	if err != nil {
		return "", err
	}
	return parseSummary(raw)
}

func (c *GenAIClient) ExtractKeywords(ctx context.Context, text string) ([][]string, error) {
	raw, err := c.generateJSON(ctx, keywordsPrompt, text)
	if err != nil {
		return nil, err
	}
	return parseKeywords(raw)
}

func (c *GenAIClient) AnalyzeSentiment(ctx context.Context, text string) (string, float64, error) {
	raw, err := c.generateJSON(ctx, sentimentPrompt, text)
	if err != nil {
		return "", 0, err
	}
	return parseSentiment(raw)
}

// generateJSON 프롬프트 + 본문으로 JSON 모드 응답 요청
func (c *GenAIClient) generateJSON(ctx context.Context, instruction, text string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(instruction+"\n\n"+text), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", ErrEmptyModelResponse
	}
	return out, nil
}

func parseSummary(raw string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("failed to parse summary: %w", err)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return "", ErrEmptyModelResponse
	}
	return strings.TrimSpace(out.Summary), nil
}

func parseKeywords(raw string) ([][]string, error) {
	var out struct {
		Keywords [][]string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse keywords: %w", err)
	}
	topics := make([][]string, 0, len(out.Keywords))
	for _, topic := range out.Keywords {
		words := make([]string, 0, len(topic))
		for _, w := range topic {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		if len(words) > 0 {
			topics = append(topics, words)
		}
	}
	return topics, nil
}

func parseSentiment(raw string) (string, float64, error) {
	var out struct {
		Sentiment  string  `json:"sentiment"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", 0, fmt.Errorf("failed to parse sentiment: %w", err)
	}
	label := strings.ToUpper(strings.TrimSpace(out.Sentiment))
	if label != "POSITIVE" && label != "NEGATIVE" {
		return "", 0, fmt.Errorf("unexpected sentiment label %q", out.Sentiment)
	}
	confidence := out.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return label, confidence, nil
}
