package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"viralclip/internal/model"

	"github.com/rs/zerolog"
)

// Call-site names used for schema names and degraded-response logs.
const (
	sitePersona     = "persona_analysis"
	siteScene       = "scene_detection"
	siteSentiment   = "sentiment_analysis"
	siteTitles      = "viral_titles"
	siteDescription = "viral_description"
)

const (
	fallbackTitleNoCandidates = "Amazing Moment You Won't Believe!"
	defaultOptimalDuration    = 15
)

// Analyzer runs the prompt set behind clip generation. Every method returns
// usable content: a failed or unparseable completion yields a fixed default
// and a warn log, never an error.
type Analyzer struct {
	llm    LLMClient
	logger zerolog.Logger
}

func NewAnalyzer(llm LLMClient, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		llm:    llm,
		logger: logger.With().Str("service", "Analyzer").Logger(),
	}
}

func defaultPersona() model.PersonaAnalysis {
	return model.PersonaAnalysis{
		PersonaType:      "Popular Creator",
		FanPreferences:   []string{"emotional moments", "authentic reactions"},
		BestMomentTypes:  []string{"laugh", "surprise", "emotion"},
		RecommendedStyle: "energetic and engaging",
	}
}

func defaultScene() model.SceneAnalysis {
	return model.SceneAnalysis{
		OptimalDuration:    defaultOptimalDuration,
		KeywordsTriggers:   []string{"laugh", "reaction", "moment"},
		EmotionalIntensity: "high",
		EngagementFactors:  []string{"authenticity", "emotion", "surprise"},
	}
}

func defaultSentiment() model.SentimentAnalysis {
	return model.SentimentAnalysis{
		TrendingTopics:      []string{"viral moments", "authentic reactions"},
		ViralPotential:      75,
		RecommendedHashtags: []string{"#viral", "#trending", "#moment"},
		ContentTiming:       "evening peak hours",
	}
}

func fallbackTitle(artistName, sceneTheme string) string {
	return fmt.Sprintf("%s %s Moment - You Won't Believe What Happens!", artistName, sceneTheme)
}

func fallbackDescription(artistName, sceneTheme string) string {
	return fmt.Sprintf("Watch %s's incredible %s moment! 🎬✨", artistName, sceneTheme)
}

type titlesPayload struct {
	Titles []string `json:"titles"`
}

type descriptionPayload struct {
	Description string `json:"description"`
}

var (
	stringSchema      = map[string]any{"type": "string"}
	numberSchema      = map[string]any{"type": "number"}
	stringArraySchema = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
)

func objectSchema(name string, props map[string]any, required ...string) *ResponseSchema {
	return &ResponseSchema{
		Name: name,
		Schema: map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		},
	}
}

// parseCompletion decodes the JSON object carried by a completion into T.
func parseCompletion[T any](content string) (T, error) {
	var v T
	clean, err := extractJSONObject(content)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(clean), &v); err != nil {
		return v, fmt.Errorf("decode completion: %w", err)
	}
	return v, nil
}

// completeInto asks for a schema-constrained completion and decodes it.
func completeInto[T any](ctx context.Context, a *Analyzer, system, user string, schema *ResponseSchema) (T, error) {
	var zero T
	content, err := a.llm.Complete(ctx, []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, schema)
	if err != nil {
		return zero, err
	}
	return parseCompletion[T](content)
}

func (a *Analyzer) degraded(site string, err error) {
	a.logger.Warn().Err(err).Str("call_site", site).Msg("AI response unusable, using fallback")
}

// AnalyzePersona describes the artist persona and what the fan base responds to.
func (a *Analyzer) AnalyzePersona(ctx context.Context, artistName, sceneTheme string) model.PersonaAnalysis {
	schema := objectSchema(sitePersona, map[string]any{
		"personaType":      stringSchema,
		"fanPreferences":   stringArraySchema,
		"bestMomentTypes":  stringArraySchema,
		"recommendedStyle": stringSchema,
	}, "personaType", "fanPreferences", "bestMomentTypes", "recommendedStyle")

	out, err := completeInto[model.PersonaAnalysis](ctx, a,
		"You are an expert in analyzing artist personas and their fan engagement patterns. Provide concise analysis in JSON format.",
		fmt.Sprintf(`Analyze the persona of artist %q for scene theme %q. Return JSON with: { "personaType": string, "fanPreferences": string[], "bestMomentTypes": string[], "recommendedStyle": string }`, artistName, sceneTheme),
		schema,
	)
	if err != nil {
		a.degraded(sitePersona, err)
		return defaultPersona()
	}
	return out
}

// DetectScene suggests clip timing and the traits of the moment to look for.
func (a *Analyzer) DetectScene(ctx context.Context, sceneTheme, artistName string) model.SceneAnalysis {
	schema := objectSchema(siteScene, map[string]any{
		"optimalDuration":    numberSchema,
		"keywordsTriggers":   stringArraySchema,
		"emotionalIntensity": stringSchema,
		"engagementFactors":  stringArraySchema,
	}, "optimalDuration", "keywordsTriggers", "emotionalIntensity", "engagementFactors")

	out, err := completeInto[model.SceneAnalysis](ctx, a,
		"You are an expert in video content analysis. Provide scene detection recommendations in JSON format.",
		fmt.Sprintf(`For artist %q with theme %q, suggest optimal clip timing and characteristics. Return JSON with: { "optimalDuration": number, "keywordsTriggers": string[], "emotionalIntensity": string, "engagementFactors": string[] }`, artistName, sceneTheme),
		schema,
	)
	if err != nil {
		a.degraded(siteScene, err)
		return defaultScene()
	}
	return out
}

// AnalyzeSentiment scores current market sentiment around the artist and theme.
func (a *Analyzer) AnalyzeSentiment(ctx context.Context, artistName, sceneTheme string) model.SentimentAnalysis {
	schema := objectSchema(siteSentiment, map[string]any{
		"trendingTopics":      stringArraySchema,
		"viralPotential":      numberSchema,
		"recommendedHashtags": stringArraySchema,
		"contentTiming":       stringSchema,
	}, "trendingTopics", "viralPotential", "recommendedHashtags", "contentTiming")

	out, err := completeInto[model.SentimentAnalysis](ctx, a,
		"You are an expert in social media trends and viral content analysis. Provide sentiment analysis in JSON format.",
		fmt.Sprintf(`Analyze current market sentiment for artist %q with theme %q. Return JSON with: { "trendingTopics": string[], "viralPotential": number, "recommendedHashtags": string[], "contentTiming": string }`, artistName, sceneTheme),
		schema,
	)
	if err != nil {
		a.degraded(siteSentiment, err)
		return defaultSentiment()
	}
	return out
}

// GenerateTitle returns the first of several generated title candidates.
func (a *Analyzer) GenerateTitle(ctx context.Context, artistName, sceneTheme, keywords string) string {
	schema := objectSchema(siteTitles, map[string]any{"titles": stringArraySchema}, "titles")

	out, err := completeInto[titlesPayload](ctx, a,
		"You are an expert in creating viral social media titles. Generate catchy, engaging titles that drive clicks and engagement.",
		fmt.Sprintf(`Create 3 viral titles for a %s clip of artist %q. Keywords: %s. Return as JSON: { "titles": string[] }`, sceneTheme, artistName, keywords),
		schema,
	)
	if err != nil {
		a.degraded(siteTitles, err)
		return fallbackTitle(artistName, sceneTheme)
	}
	if len(out.Titles) == 0 || strings.TrimSpace(out.Titles[0]) == "" {
		return fallbackTitleNoCandidates
	}
	return strings.TrimSpace(out.Titles[0])
}

// GenerateDescription writes a short caption for a clip with the given title.
// The length target is a prompt instruction only.
func (a *Analyzer) GenerateDescription(ctx context.Context, artistName, sceneTheme, title string) string {
	schema := objectSchema(siteDescription, map[string]any{"description": stringSchema}, "description")

	out, err := completeInto[descriptionPayload](ctx, a,
		"You are an expert in writing engaging social media descriptions that drive engagement and shares.",
		fmt.Sprintf(`Write a viral description for a clip titled %q featuring %s in a %s moment. Keep it under 150 characters. Return as JSON: { "description": string }`, title, artistName, sceneTheme),
		schema,
	)
	if err != nil {
		a.degraded(siteDescription, err)
		return fallbackDescription(artistName, sceneTheme)
	}
	if d := strings.TrimSpace(out.Description); d != "" {
		return d
	}
	return fallbackDescription(artistName, sceneTheme)
}
