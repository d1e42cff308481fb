package time

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
)

// ManualTimeProvider is a clock that only moves when told to.
// Tickers it creates fire on Tick.
type ManualTimeProvider struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualTimeProvider creates a clock frozen at now
func NewManualTimeProvider(now time.Time) *ManualTimeProvider {
	return &ManualTimeProvider{now: now}
}

// Now returns the frozen time
func (p *ManualTimeProvider) Now() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

// Advance moves the clock forward
func (p *ManualTimeProvider) Advance(d time.Duration) {
	p.mu.Lock()
	p.now = p.now.Add(d)
	p.mu.Unlock()
}

// Set moves the clock to t
func (p *ManualTimeProvider) Set(t time.Time) {
	p.mu.Lock()
	p.now = t
	p.mu.Unlock()
}

// Tick delivers the current time to every live ticker without blocking
func (p *ManualTimeProvider) Tick() {
	p.mu.Lock()
	now := p.now
	tickers := append([]*manualTicker(nil), p.tickers...)
	p.mu.Unlock()

	for _, t := range tickers {
		if t.stopped() {
			continue
		}
		select {
		case t.ch <- now:
		default:
		}
	}
}

// Since returns the time elapsed since t on the frozen clock
func (p *ManualTimeProvider) Since(t time.Time) core.Duration {
	return core.Duration(p.Now().Sub(t))
}

// Until returns the duration until t on the frozen clock
func (p *ManualTimeProvider) Until(t time.Time) core.Duration {
	return core.Duration(t.Sub(p.Now()))
}

// Sleep advances the clock instead of blocking
func (p *ManualTimeProvider) Sleep(d core.Duration) {
	p.Advance(d.Std())
}

// NewTicker registers a ticker driven by Tick
func (p *ManualTimeProvider) NewTicker(core.Duration) core.Ticker {
	t := &manualTicker{ch: make(chan time.Time, 1)}
	p.mu.Lock()
	p.tickers = append(p.tickers, t)
	p.mu.Unlock()
	return t
}

// WithTimeout returns a context with a real timeout
func (p *ManualTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

// ParseDuration parses a duration string
func (p *ManualTimeProvider) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}

type manualTicker struct {
	mu   sync.Mutex
	ch   chan time.Time
	done bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
}

func (t *manualTicker) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
