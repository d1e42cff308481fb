package messaging

import "context"

// Publisher delivers an encoded event to a topic
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
	Close() error
}
