package model

import "time"

type Text struct {
	ID        int64
	UserID    int64
	Headline  string
	Body      string
	Model     *string
	CreatedAt time.Time
}

type TextCreateRequest struct {
	Headline string `json:"headline"`
	TextBody string `json:"text_body"`
}

type TextResponse struct {
	ID        int64  `json:"id"`
	Headline  string `json:"headline"`
	TextBody  string `json:"text_body"`
	CreatedAt string `json:"created_at"`
}

type SimilarTextResponse struct {
	ID       int64   `json:"id"`
	Headline string  `json:"headline"`
	Distance float64 `json:"distance"`
}

type TextRequest struct {
	Text string `json:"text"`
}

type TextsRequest struct {
	Texts []string `json:"texts"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type KeywordsResponse struct {
	Keywords [][]string `json:"keywords"`
}

type SentimentResponse struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

type ProjectionResponse struct {
	ImageBase64 string       `json:"image_base64"`
	Points      [][2]float64 `json:"points"`
}
