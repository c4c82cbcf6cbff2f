package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/collab-approval/internal/config"
	"github.com/garyjia/collab-approval/internal/container"
	"github.com/garyjia/collab-approval/pkg/utils"
)

// Sends one message through the configured notifier (ses, lark or log) to check delivery
// independently of the approval workflow.
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file (optional)")
	to := flag.String("to", "", "recipient email address")
	timeout := flag.Duration("timeout", 30*time.Second, "send timeout")
	flag.Parse()

	if err := utils.ValidateEmail(*to); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --to: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: test-notification --to someone@example.com [--config <path>]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	fmt.Println("=== Notification Test ===")
	fmt.Printf("  Provider: %s\n", cfg.Notifier.Provider)
	fmt.Printf("  Recipient: %s\n\n", strings.TrimSpace(*to))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	notifier, err := container.ProvideNotifier(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to create notifier: %v\n", err)
		os.Exit(1)
	}

	body := fmt.Sprintf(`<html><body><h1>Notification test</h1>
<p>This message was sent by %s to confirm delivery.</p>
<p><a href="%s">Open the approval service</a></p></body></html>`, cfg.App.SenderName, cfg.App.BaseURL)

	if err := notifier.Send(ctx, strings.TrimSpace(*to), "Notification test", body); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Send failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Message sent")
}
