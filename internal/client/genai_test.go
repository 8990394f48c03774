package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analytica/backend/internal/config"
)

func TestNewGenAIClientRequiresKey(t *testing.T) {
	_, err := NewGenAIClient(t.Context(), config.AIConfig{})
	assert.Error(t, err)
}

func TestParseSummary(t *testing.T) {
	got, err := parseSummary(`{"summary": "  short version "}`)
	require.NoError(t, err)
	assert.Equal(t, "short version", got)

	_, err = parseSummary(`{"summary": ""}`)
	assert.ErrorIs(t, err, ErrEmptyModelResponse)

	_, err = parseSummary(`not json`)
	assert.Error(t, err)
}

func TestParseKeywordsDropsBlankEntries(t *testing.T) {
	got, err := parseKeywords(`{"keywords": [["go", " ", "gin"], [], ["jwt"]]}`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"go", "gin"}, {"jwt"}}, got)
}

func TestParseSentiment(t *testing.T) {
	label, score, err := parseSentiment(`{"sentiment": "positive", "confidence": 1.3}`)
	require.NoError(t, err)
	assert.Equal(t, "POSITIVE", label)
	assert.Equal(t, 1.0, score)

	_, _, err = parseSentiment(`{"sentiment": "meh", "confidence": 0.5}`)
	assert.Error(t, err)
}
