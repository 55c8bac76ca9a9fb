package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzerFallsBackOnUnparseableContent(t *testing.T) {
	llm := &scriptedLLM{answers: map[string]string{
		sitePersona:     "I cannot answer that",
		siteScene:       `{"optimalDuration": "long"}`,
		siteSentiment:   `{"viralPotential": 88`,
		siteTitles:      "",
		siteDescription: `{"description": ""}`,
	}}
	a := NewAnalyzer(llm, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, defaultPersona(), a.AnalyzePersona(ctx, "Nova", "funny"))
	assert.Equal(t, defaultScene(), a.DetectScene(ctx, "funny", "Nova"))
	assert.Equal(t, defaultSentiment(), a.AnalyzeSentiment(ctx, "Nova", "funny"))
	assert.Equal(t, fallbackTitle("Nova", "funny"), a.GenerateTitle(ctx, "Nova", "funny", ""))
	assert.Equal(t, fallbackDescription("Nova", "funny"), a.GenerateDescription(ctx, "Nova", "funny", "T"))
}

func TestAnalyzerDefaultsAreIndependentCopies(t *testing.T) {
	p := defaultPersona()
	p.FanPreferences[0] = "mutated"
	assert.Equal(t, "emotional moments", defaultPersona().FanPreferences[0])
}

func TestAnalyzerParsesSentiment(t *testing.T) {
	llm := &scriptedLLM{answers: map[string]string{
		siteSentiment: `{"trendingTopics":["x"],"viralPotential":42.5,"recommendedHashtags":["#x"],"contentTiming":"noon"}`,
	}}
	got := NewAnalyzer(llm, zerolog.Nop()).AnalyzeSentiment(context.Background(), "Nova", "funny")
	assert.Equal(t, 42.5, got.ViralPotential)
	assert.Equal(t, []string{"#x"}, got.RecommendedHashtags)
}
