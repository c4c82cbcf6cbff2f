package lark

import (
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
)

// Config holds Lark app credentials
type Config struct {
	AppID     string
	AppSecret string
}

// NewSDKClient creates a Lark SDK client with tenant token caching
func NewSDKClient(cfg Config) *lark.Client {
	return lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)
}
