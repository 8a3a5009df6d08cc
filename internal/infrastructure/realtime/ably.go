package realtime

import (
	"context"
	"fmt"
	"os"

	"github.com/ably/ably-go/ably"
)

// AblyPublisher mirrors row events onto hosted Ably channels so clients that
// cannot hold a websocket to this process (mobile, background tabs) still get
// the change feed. Publishing is best-effort: a failed publish is logged by
// the caller and never fails the originating write.
type AblyPublisher struct {
	client *ably.Realtime
}

// NewAblyPublisherFromEnv constructs the publisher from ABLY_KEY. A missing
// key is an error; callers that treat ably as optional should check the env
// var themselves before calling.
func NewAblyPublisherFromEnv() (*AblyPublisher, error) {
	key := os.Getenv("ABLY_KEY")
	if key == "" {
		return nil, fmt.Errorf("ably: ABLY_KEY environment variable not set")
	}
	client, err := ably.NewRealtime(
		ably.WithKey(key),
		ably.WithEchoMessages(false),
	)
	if err != nil {
		return nil, fmt.Errorf("ably: new client: %w", err)
	}
	return &AblyPublisher{client: client}, nil
}

// ChannelName maps a conversation to its Ably channel.
func ChannelName(conversationID string) string {
	return fmt.Sprintf("conversation:%s", conversationID)
}

// PublishMessage pushes a new-message payload to the conversation channel.
func (p *AblyPublisher) PublishMessage(ctx context.Context, conversationID string, payload map[string]any) error {
	channel := p.client.Channels.Get(ChannelName(conversationID))
	if err := channel.Publish(ctx, "new_message", payload); err != nil {
		return fmt.Errorf("ably: publish: %w", err)
	}
	return nil
}

func (p *AblyPublisher) Close() {
	p.client.Close()
}
