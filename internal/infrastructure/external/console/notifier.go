// Package console provides a notifier that only logs messages, for local runs
package console

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Message is one logged notification
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier implements port.Notifier by logging each message and keeping the
// most recent ones in memory
type Notifier struct {
	logger *zap.Logger
	keep   int

	mu     sync.Mutex
	recent []Message
}

// NewNotifier creates a log-only notifier retaining up to keep messages
func NewNotifier(logger *zap.Logger, keep int) *Notifier {
	return &Notifier{logger: logger, keep: keep}
}

// Send logs the message
func (n *Notifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	n.logger.Info("Notification",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)))

	if n.keep <= 0 {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.recent = append(n.recent, Message{To: to, Subject: subject, Body: htmlBody})
	if len(n.recent) > n.keep {
		n.recent = n.recent[len(n.recent)-n.keep:]
	}
	return nil
}

// Recent returns retained messages, oldest first
func (n *Notifier) Recent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.recent...)
}
