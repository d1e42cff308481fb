package reconciliation

import (
	"context"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	gatewayport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/gateway"
)

// Lookup sources, in the order they are consulted
const (
	SourceCheckout  = "checkout"
	SourceReference = "reference"
	SourcePayment   = "payment"
	SourceStatus    = "status"
)

// Verification is the result of consulting the provider about a transaction
type Verification struct {
	Record       entity.PaymentRecord
	Source       string
	ViaReference bool // the reference lookup found a record; later steps never clear it
	Successful   bool
	Belongs      bool // reference and amount match the transaction
	Verified     bool
}

// step is one optional provider lookup. A record it returns replaces the
// current candidate only when accept allows it.
type step struct {
	source string
	when   func(t *entity.Transaction, current *Verification) bool
	fetch  func(ctx context.Context, t *entity.Transaction) (entity.PaymentRecord, error)
	accept func(record entity.PaymentRecord) bool
}

// Pipeline runs the ordered provider lookups for a transaction
type Pipeline struct {
	steps                 []step
	verifyReferenceAmount bool
	logger                coreport.Logger
}

// NewPipeline builds the lookup order:
//  1. checkout by session id, kept only if successful
//  2. payment by reference, always kept when found
//  3. payment by id, while nothing successful has been found
//  4. status by id, while nothing successful has been found, kept only if successful
func NewPipeline(gateway gatewayport.PaymentGateway, verifyReferenceAmount bool, logger coreport.Logger) *Pipeline {
	hasCheckout := func(t *entity.Transaction, _ *Verification) bool {
		return t.ProviderCheckoutID != ""
	}
	needsFallback := func(t *entity.Transaction, current *Verification) bool {
		return t.ProviderCheckoutID != "" && !current.Successful
	}
	always := func(entity.PaymentRecord) bool { return true }
	successful := func(r entity.PaymentRecord) bool { return r.IsSuccessful() }

	return &Pipeline{
		steps: []step{
			{
				source: SourceCheckout,
				when:   hasCheckout,
				fetch: func(ctx context.Context, t *entity.Transaction) (entity.PaymentRecord, error) {
					return gateway.GetCheckout(ctx, t.ProviderCheckoutID)
				},
				accept: successful,
			},
			{
				source: SourceReference,
				when: func(t *entity.Transaction, _ *Verification) bool {
					return t.ProviderReference != ""
				},
				fetch: func(ctx context.Context, t *entity.Transaction) (entity.PaymentRecord, error) {
					return gateway.GetPaymentByReference(ctx, t.ProviderReference)
				},
				accept: always,
			},
			{
				source: SourcePayment,
				when:   needsFallback,
				fetch: func(ctx context.Context, t *entity.Transaction) (entity.PaymentRecord, error) {
					return gateway.GetPayment(ctx, t.ProviderCheckoutID)
				},
				accept: always,
			},
			{
				source: SourceStatus,
				when:   needsFallback,
				fetch: func(ctx context.Context, t *entity.Transaction) (entity.PaymentRecord, error) {
					return gateway.GetPaymentStatus(ctx, t.ProviderCheckoutID)
				},
				accept: successful,
			},
		},
		verifyReferenceAmount: verifyReferenceAmount,
		logger:                logger,
	}
}

// Verify consults the provider and decides whether the transaction is paid.
// A failing lookup counts as "no data" from that source.
func (p *Pipeline) Verify(ctx context.Context, t *entity.Transaction) *Verification {
	v := &Verification{}

	for _, s := range p.steps {
		if !s.when(t, v) {
			continue
		}

		record, err := s.fetch(ctx, t)
		if err != nil {
			p.logger.Warn("Gateway lookup failed", map[string]any{
				"transaction_id": t.ID,
				"source":         s.source,
				"error":          err.Error(),
			})
			continue
		}
		if record == nil {
			p.logger.Debug("Gateway lookup found nothing", map[string]any{
				"transaction_id": t.ID,
				"source":         s.source,
			})
			continue
		}
		if !s.accept(record) {
			continue
		}

		v.Record = record
		v.Source = s.source
		v.Successful = record.IsSuccessful()
		if s.source == SourceReference {
			// the provider matched our reference, so ownership is settled
			// even if a later lookup supplies the final record
			v.ViaReference = true
		}
	}

	if v.Record == nil {
		return v
	}

	v.Belongs = v.Record.BelongsTo(t.ProviderReference, t.Total)
	if v.ViaReference {
		v.Verified = v.Successful && (!p.verifyReferenceAmount || v.Record.AmountMatches(t.Total))
	} else {
		v.Verified = v.Successful && v.Belongs
	}

	p.logger.Debug("Gateway verification evaluated", map[string]any{
		"transaction_id": t.ID,
		"source":         v.Source,
		"status":         v.Record.Status(),
		"successful":     v.Successful,
		"belongs":        v.Belongs,
		"verified":       v.Verified,
	})
	return v
}
