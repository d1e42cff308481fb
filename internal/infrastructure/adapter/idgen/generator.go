package idgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	receiptPrefix   = "RCPT"
	referencePrefix = "RRN"
	timestampLayout = "20060102150405"
)

// Generator issues receipt numbers from a snowflake node and provider
// references and event ids from random UUIDs
type Generator struct {
	node *snowflake.Node
}

var _ core.IDGenerator = (*Generator)(nil)

// NewGenerator creates a generator for the given snowflake node (0-1023)
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// ReceiptNumber formats RCPT-<yyyyMMddHHmmss>-<last 8 digits of a snowflake id>
func (g *Generator) ReceiptNumber(now time.Time) string {
	id := g.node.Generate().Int64()
	return fmt.Sprintf("%s-%s-%08d", receiptPrefix, now.Format(timestampLayout), id%100000000)
}

// ProviderReference formats RRN-<yyyyMMddHHmmss>-<8 upper-case hex characters>
func (g *Generator) ProviderReference(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", referencePrefix, now.Format(timestampLayout), token)
}

// EventID returns a random UUID
func (g *Generator) EventID() string {
	return uuid.NewString()
}
