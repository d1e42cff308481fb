package messaging

import (
	"context"
	"encoding/json"

	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	messagingport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/messaging"
)

// LogPublisher writes events to the log when no broker is configured
type LogPublisher struct {
	logger coreport.Logger
}

var _ messagingport.Publisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger coreport.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event
func (p *LogPublisher) Publish(_ context.Context, topic, key string, payload []byte) error {
	fields := map[string]any{
		"topic": topic,
		"key":   key,
	}
	if json.Valid(payload) {
		fields["payload"] = json.RawMessage(payload)
	} else {
		fields["payload"] = string(payload)
	}
	p.logger.Info("Event published", fields)
	return nil
}

// Close does nothing
func (p *LogPublisher) Close() error {
	return nil
}
