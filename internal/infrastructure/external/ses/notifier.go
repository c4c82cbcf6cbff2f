package ses

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

const charset = "UTF-8"

// Config holds SES settings. Static keys are optional; without them the
// default AWS credential chain is used.
type Config struct {
	Region           string
	FromAddress      string
	ConfigurationSet string
	AccessKeyID      string
	SecretAccessKey  string
}

type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Notifier implements port.Notifier with Amazon SES v2
type Notifier struct {
	client emailSender
	config Config
	logger *zap.Logger
}

// NewNotifier loads AWS configuration and creates an SES notifier
func NewNotifier(ctx context.Context, cfg Config, logger *zap.Logger) (*Notifier, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("ses from address is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("SES notifier initialized", zap.String("region", cfg.Region), zap.String("from", cfg.FromAddress))
	return &Notifier{client: sesv2.NewFromConfig(awsCfg), config: cfg, logger: logger}, nil
}

// Send delivers one HTML email
func (n *Notifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient email cannot be empty")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.config.FromAddress),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String(charset)},
				},
			},
		},
	}
	if n.config.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(n.config.ConfigurationSet)
	}

	out, err := n.client.SendEmail(ctx, input)
	if err != nil {
		n.logger.Error("Failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("ses send email: %w", err)
	}

	n.logger.Info("Email sent", zap.String("to", to), zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}
