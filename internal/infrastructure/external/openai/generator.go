package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/domain/entity"
)

// Config holds OpenAI client settings
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Generator implements port.PlanGenerator using chat completions
type Generator struct {
	client  *openai.Client
	model   string
	prompts *PromptConfig
	logger  *zap.Logger
}

// NewGenerator creates a new OpenAI plan generator. Non-zero Temperature and
// MaxTokens in cfg override the prompt file values.
func NewGenerator(cfg Config, prompts *PromptConfig, logger *zap.Logger) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	p := *prompts
	if cfg.Temperature > 0 {
		p.PlanGeneration.Temperature = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		p.PlanGeneration.MaxTokens = cfg.MaxTokens
	}

	return &Generator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		prompts: &p,
		logger:  logger,
	}
}

// Generate drafts plan content for the two companies
func (g *Generator) Generate(ctx context.Context, req port.GenerationRequest) (*entity.EventPlan, error) {
	prompt, err := renderTemplate(g.prompts.PlanGeneration.UserTemplate, req)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Generating event plan",
		zap.String("company_a", req.CompanyA.Name),
		zap.String("company_b", req.CompanyB.Name))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.prompts.PlanGeneration.Temperature,
		MaxTokens:   g.prompts.PlanGeneration.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.prompts.PlanGeneration.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		g.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	plan, err := parsePlan(content)
	if err != nil {
		g.logger.Error("Failed to parse OpenAI response", zap.Error(err), zap.String("content", content))
		return nil, err
	}

	g.logger.Info("Event plan generated",
		zap.String("title", plan.Title),
		zap.Int("agenda_items", len(plan.Agenda)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return plan, nil
}

// parsePlan decodes the model output, falling back to the first balanced
// JSON object when the reply carries surrounding prose or code fences
func parsePlan(content string) (*entity.EventPlan, error) {
	var plan entity.EventPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		extracted := extractJSON(content)
		if extracted == "" {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &plan); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	if strings.TrimSpace(plan.Title) == "" || strings.TrimSpace(plan.Description) == "" {
		return nil, fmt.Errorf("generated plan is missing title or description")
	}

	// Identity and workflow fields belong to the caller
	plan.ID = ""
	plan.Approval = entity.ApprovalRecord{}
	plan.Eventbrite = nil

	return &plan, nil
}

// extractJSON returns the first balanced {...} object in content
func extractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}
