// Package reply formats and delivers the single reply each dispatch
// produces.
package reply

import (
	"context"
	"strings"
	"sync"
)

// FormatBotReply renders the uniform bot reply: the bot name in bold on its
// own line, then the response text.
func FormatBotReply(botName, text string) string {
	botName = strings.TrimSpace(botName)
	if botName == "" {
		return text
	}
	return "*" + botName + "*\n" + text
}

// Sink delivers one reply to a user and returns a delivery handle (platform
// dependent, may be empty).
type Sink interface {
	Send(ctx context.Context, userRef, text string) (string, error)
}

// Buffer is a Sink that holds replies in memory. The bot surface uses it to
// return the reply in the HTTP response body.
type Buffer struct {
	mu      sync.Mutex
	replies []string
}

// Send records the reply and returns an empty handle.
func (b *Buffer) Send(ctx context.Context, userRef, text string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies = append(b.replies, text)
	return "", nil
}

// Last returns the most recent reply, or "".
func (b *Buffer) Last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.replies) == 0 {
		return ""
	}
	return b.replies[len(b.replies)-1]
}
