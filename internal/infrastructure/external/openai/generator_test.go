package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/collab-approval/internal/application/port"
)

const planJSON = `{"title":"Robots Meet Fleets","description":"A joint workshop.","objectives":["leads"],` +
	`"agenda":[{"startMin":0,"endMin":30,"title":"Intro","format":"talk"},{"startMin":30,"endMin":120,"title":"Lab","format":"hands-on"}],` +
	`"marketingAssets":{"landingHero":"Automate the last mile"},` +
	`"pilotTemplate":{"objective":"Pilot","metrics":["cost"],"durationWeeks":6,"pricingTiers":[{"tier":"Basic","priceSGD":2000,"includes":["setup"]}]},` +
	`"approval":{"state":"published"},"id":"evt-hijack"}`

func sampleRequest() port.GenerationRequest {
	return port.GenerationRequest{
		CompanyA: port.CompanyProfile{Name: "Acme", ShortDescription: "Robotics", Website: "https://acme.example.com", Offerings: []string{"arms", "vision"}, Goals: []string{"leads"}},
		CompanyB: port.CompanyProfile{Name: "Beta", ShortDescription: "Logistics", Offerings: []string{"fleet"}, Goals: []string{"pilots"}},
	}
}

func TestGenerator_Generate(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: planJSON},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	prompts, err := LoadPrompts("")
	require.NoError(t, err)

	gen := NewGenerator(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "gpt-4o"}, prompts, zap.NewNop())
	plan, err := gen.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "Robots Meet Fleets", plan.Title)
	assert.Equal(t, 120, plan.DurationMinutes())
	assert.Equal(t, "Automate the last mile", plan.MarketingAssets.LandingHero)
	assert.Empty(t, plan.ID)
	assert.Empty(t, plan.Approval.State)

	assert.Equal(t, "gpt-4o", got.Model)
	require.Len(t, got.Messages, 2)
	user := got.Messages[1].Content
	assert.Contains(t, user, "Company A: Acme")
	assert.Contains(t, user, "- Offerings: arms, vision")
	assert.Contains(t, user, "- Website: https://acme.example.com")
	assert.NotContains(t, user, "<no value>")
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
}

func TestParsePlan(t *testing.T) {
	fenced := "Here is your plan:\n```json\n" + `{"title":"T {braces}","description":"D \"quoted\" }"}` + "\n```"
	plan, err := parsePlan(fenced)
	require.NoError(t, err)
	assert.Equal(t, "T {braces}", plan.Title)
	assert.Equal(t, `D "quoted" }`, plan.Description)

	_, err = parsePlan(`{"title":"only title"}`)
	assert.Error(t, err)

	_, err = parsePlan("no json at all")
	assert.Error(t, err)
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := LoadPrompts("/nonexistent/prompts.yaml")
	assert.Error(t, err)
}
