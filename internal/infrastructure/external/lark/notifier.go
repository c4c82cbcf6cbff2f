package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// messageCreator is the slice of the IM message API the notifier needs
type messageCreator interface {
	Create(ctx context.Context, req *larkIm.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkIm.CreateMessageResp, error)
}

// Notifier implements port.Notifier by sending a Lark post message to the
// user registered under the recipient email
type Notifier struct {
	messages     messageCreator
	buildRequest func(body *larkIm.CreateMessageReqBody) *larkIm.CreateMessageReq
	logger       *zap.Logger
}

// NewNotifier creates a new Lark notifier
func NewNotifier(client *lark.Client, logger *zap.Logger) *Notifier {
	return &Notifier{
		messages:     client.Im.Message,
		buildRequest: newCreateMessageReq,
		logger:       logger,
	}
}

// newCreateMessageReq addresses the message body to a user by email
func newCreateMessageReq(body *larkIm.CreateMessageReqBody) *larkIm.CreateMessageReq {
	return larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType("email").
		Body(body).
		Build()
}

// Send converts the HTML body to a post message and delivers it by email lookup
func (n *Notifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient email cannot be empty")
	}

	content, err := buildPostContent(subject, htmlBody)
	if err != nil {
		return fmt.Errorf("failed to build post content: %w", err)
	}

	build := n.buildRequest
	if build == nil {
		build = newCreateMessageReq
	}
	req := build(larkIm.NewCreateMessageReqBodyBuilder().
		ReceiveId(to).
		MsgType("post").
		Content(content).
		Build())

	resp, err := n.messages.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send Lark message", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Success() {
		n.logger.Error("Lark API returned failure",
			zap.String("to", to),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	n.logger.Info("Lark message sent", zap.String("message_id", messageID), zap.String("to", to))
	return nil
}

type postElement struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

type postBody struct {
	Title   string          `json:"title"`
	Content [][]postElement `json:"content"`
}

func buildPostContent(subject, htmlBody string) (string, error) {
	lines, err := htmlToLines(htmlBody)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(map[string]postBody{
		"en_us": {Title: subject, Content: lines},
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
