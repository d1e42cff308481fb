package core

import "time"

// Metrics records business and transport counters
type Metrics interface {
	RecordHTTPRequest(handler, status string, duration time.Duration)
	RecordCheckout(method, outcome string)
	RecordReconciliation(source, outcome string)
	RecordGatewayRequest(operation, status string, duration time.Duration)
	SetDBPoolStats(inUse, open int)
}
