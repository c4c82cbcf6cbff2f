package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/infrastructure/external/openai"
)

// Generates one plan from two sample company profiles to check OpenAI connectivity and prompt output.
func main() {
	apiKey := flag.String("key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	promptsPath := flag.String("prompts", "", "Path to prompts YAML (built-in prompts when empty)")
	model := flag.String("model", "gpt-4o", "Chat completion model")
	timeout := flag.Duration("timeout", 120*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: OPENAI_API_KEY not set and no --key flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: test-gpt-connection --key sk-... [--prompts <path>] [--timeout 120s]\n")
		os.Exit(1)
	}

	fmt.Println("=== Plan Generation Connection Test ===")
	fmt.Printf("  Model: %s\n", *model)
	fmt.Printf("  API key length: %d chars\n", len(*apiKey))
	fmt.Printf("  Timeout: %v\n\n", *timeout)

	prompts, err := openai.LoadPrompts(*promptsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prompts: %v\n", err)
		os.Exit(1)
	}

	generator := openai.NewGenerator(openai.Config{APIKey: *apiKey, Model: *model}, prompts, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	plan, err := generator.Generate(ctx, port.GenerationRequest{
		CompanyA: port.CompanyProfile{
			Name:             "Northwind Analytics",
			ShortDescription: "Self-serve BI for retail teams",
			IndustryTags:     []string{"analytics", "retail"},
			Offerings:        []string{"dashboards", "demand forecasting"},
			Goals:            []string{"reach mid-market retailers"},
		},
		CompanyB: port.CompanyProfile{
			Name:             "Harbor Commerce",
			ShortDescription: "Headless storefront platform",
			IndustryTags:     []string{"ecommerce"},
			Offerings:        []string{"storefront APIs", "checkout"},
			Goals:            []string{"showcase data integrations"},
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Generation failed after %v: %v\n", time.Since(start).Round(time.Millisecond), err)
		os.Exit(1)
	}

	fmt.Printf("✓ Plan generated in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Title: %s\n", plan.Title)
	fmt.Printf("  Agenda items: %d\n\n", len(plan.Agenda))

	if *verbose {
		out, _ := json.MarshalIndent(plan, "", "  ")
		fmt.Println(string(out))
	}
}
