// Analysis Agent 서비스와 HTTP 통신하는 클라이언트 정의
//
// 환경변수:
//   - AGENT_URL: Agent 서비스 URL (예: http://analysis-agent:8000)
//
// Agent에 전달하는 데이터:
//   - texts: t-SNE 2차원 투영 대상 문서 목록

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/analytica/backend/internal/config"
	"github.com/analytica/backend/internal/model"
)

// AgentClient 구조체 정의
type AgentClient struct {
	baseURL    string
	httpClient *http.Client
}

// ProjectionRequest 구조체 정의
type ProjectionRequest struct {
	Texts []string `json:"texts"`
}

// AgentClient 객체 생성. AGENT_URL이 비어 있으면 nil 반환
func NewAgentClient(cfg config.AgentConfig) *AgentClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil
	}

	return &AgentClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // 임베딩 + t-SNE 계산 시간 고려
		},
	}
}

// POST /tsne 투영 요청하고 결과 반환 (동기)
func (c *AgentClient) RequestProjection(ctx context.Context, texts []string) (*model.ProjectionResponse, error) {
	payload, err := json.Marshal(ProjectionRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tsne", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var projection model.ProjectionResponse
	if err := json.Unmarshal(body, &projection); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(projection.Points) != len(texts) {
		return nil, fmt.Errorf("agent returned %d points for %d texts", len(projection.Points), len(texts))
	}

	return &projection, nil
}
