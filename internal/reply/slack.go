package reply

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/foundrgate/foundrgate/internal/config"
)

// SlackSink posts replies through the Slack Web API. The user reference is a
// channel or user id; when empty the configured default channel is used.
type SlackSink struct {
	api            *slack.Client
	defaultChannel string
}

// NewSlackSink builds a sink from config. APIBase is overridable for tests.
func NewSlackSink(cfg config.SlackConfig) (*SlackSink, error) {
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" {
		return nil, fmt.Errorf("slack bot token is not configured")
	}
	opts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	if base := strings.TrimSpace(cfg.APIBase); base != "" {
		opts = append(opts, slack.OptionAPIURL(strings.TrimRight(base, "/")+"/"))
	}
	return &SlackSink{
		api:            slack.New(token, opts...),
		defaultChannel: strings.TrimSpace(cfg.DefaultChannel),
	}, nil
}

// Send posts the reply and returns the message timestamp as the handle.
func (s *SlackSink) Send(ctx context.Context, userRef, text string) (string, error) {
	channel := strings.TrimSpace(userRef)
	if channel == "" {
		channel = s.defaultChannel
	}
	if channel == "" {
		return "", fmt.Errorf("no slack channel to reply to")
	}
	_, ts, err := s.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("failed to post slack message: %w", err)
	}
	return ts, nil
}
