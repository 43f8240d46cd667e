package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"text/template"
	"time"

	"github.com/strategiert/lernwelt-api/internal/config"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/generation"
	"github.com/strategiert/lernwelt-api/internal/metrics"
	"google.golang.org/genai"
)

// designPromptTemplate asks the model for a theme matching the world's
// subject and one module design per section, in section order, as pure
// JSON matching ResponseSchema.
const designPromptTemplate = `You are designing the visual theme for a learning world aimed at school students.

World title: {{.Title}}
Subject: {{.Subject}}
{{- if .Description}}
Description: {{.Description}}
{{- end}}

Sections, in order:
{{- range $i, $s := .Sections}}
{{$i}}. {{$s.Title}}{{if $s.ModuleType}} ({{$s.ModuleType}}){{end}}
{{- end}}

Respond with JSON only, no markdown fences, matching this shape:
{
  "primary_color": "#rrggbb",
  "accent_color": "#rrggbb",
  "modules": [
    {"title": "evocative display title", "visual_focus": "short visual motif"}
  ]
}

Rules:
- Pick colors that fit the subject and are readable on a light background.
- Produce exactly one modules entry per section, in the same order.
- Keep titles short and in the language of the section titles.
`

// GeminiDesignGenerator implements the generation.DesignGenerator
// interface using Google's Gemini API.
type GeminiDesignGenerator struct {
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Ensure GeminiDesignGenerator implements generation.DesignGenerator
var _ generation.DesignGenerator = (*GeminiDesignGenerator)(nil)

// NewDesignGenerator creates a new GeminiDesignGenerator with the
// provided dependencies. It validates the configuration and initializes
// the Gemini client.
func NewDesignGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiDesignGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("design").Parse(designPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiDesignGenerator{
		logger:         logger.With(slog.String("component", "gemini_design_generator")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateDesign produces a WorldDesign for the given world.
func (g *GeminiDesignGenerator) GenerateDesign(
	ctx context.Context,
	world *domain.World,
) (*domain.WorldDesign, error) {
	prompt, err := g.createPrompt(ctx, world)
	if err != nil {
		return nil, err
	}

	response, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, response, world)
}

// createPrompt generates a prompt string from the template with the world's data.
func (g *GeminiDesignGenerator) createPrompt(ctx context.Context, world *domain.World) (string, error) {
	if world == nil {
		return "", ErrNilWorld
	}

	data := promptData{
		Title:       world.Title,
		Subject:     world.Subject,
		Description: world.Description,
		Sections:    make([]promptSection, len(world.Sections)),
	}
	for i, sec := range world.Sections {
		data.Sections[i] = promptSection{
			Title:      sec.Title,
			ModuleType: string(sec.ModuleType),
		}
	}

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	g.logger.DebugContext(ctx, "design prompt generated",
		"world_id", world.ID,
		"prompt_length", promptBuffer.Len())

	return promptBuffer.String(), nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential
// backoff retry logic. Transient API errors are retried up to
// config.MaxRetries times with jittered delays; permanent errors
// (blocked content, malformed responses) are returned immediately.
func (g *GeminiDesignGenerator) callGeminiWithRetry(
	ctx context.Context,
	prompt string,
) (*ResponseSchema, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		start := time.Now()
		response, err := g.callOnce(ctx, prompt)
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.GeminiRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are not retried
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call and classifies its outcome.
func (g *GeminiDesignGenerator) callOnce(ctx context.Context, prompt string) (*ResponseSchema, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		// API-level failures are assumed transient
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var parsed ResponseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	return &parsed, nil
}

// parseResponse converts a ResponseSchema from the Gemini API into a
// domain.WorldDesign. Module designs beyond the world's section count
// are dropped; a shorter list is accepted as-is, consumers fall back
// positionally.
func (g *GeminiDesignGenerator) parseResponse(
	ctx context.Context,
	response *ResponseSchema,
	world *domain.World,
) (*domain.WorldDesign, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", generation.ErrInvalidResponse)
	}
	if world == nil {
		return nil, ErrNilWorld
	}

	modules := make([]domain.ModuleDesign, 0, len(response.Modules))
	for i, m := range response.Modules {
		if i >= len(world.Sections) {
			g.logger.WarnContext(ctx, "model produced more module designs than sections, truncating",
				"world_id", world.ID,
				"sections", len(world.Sections),
				"modules", len(response.Modules))
			break
		}
		modules = append(modules, domain.ModuleDesign{
			Title:       m.Title,
			VisualFocus: m.VisualFocus,
		})
	}

	design, err := domain.NewWorldDesign(world.ID, response.PrimaryColor, response.AccentColor, modules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	g.logger.InfoContext(ctx, "world design generated",
		"world_id", world.ID,
		"module_count", len(modules))

	return design, nil
}
