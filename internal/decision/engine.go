// Package decision turns whale signals into copy-trade go/no-go outcomes.
// It is deliberately a thin policy layer, separate from the executor, so
// eligibility and sizing rules can change without touching ledger code.
package decision

import "memex-agent/internal/domain"

// DefaultBaseNotional is the fixed notional a copy trade is sized against.
const DefaultBaseNotional = 0.1

// CopyDecision is the outcome of evaluating one whale signal.
type CopyDecision struct {
	Proceed bool
	Amount  float64 // position size; meaningful only when Proceed
	Reason  string  // set when not proceeding
}

// Engine evaluates copy-trade eligibility and sizing.
type Engine struct {
	baseNotional float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseNotional overrides the base notional.
func WithBaseNotional(n float64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.baseNotional = n
		}
	}
}

// NewEngine creates a decision engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{baseNotional: DefaultBaseNotional}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DecideCopy proceeds only on a BUY signal, sizing the trade as
// percentage of the base notional. Everything else is a no-signal
// outcome with no side effect.
func (e *Engine) DecideCopy(signal *domain.WhaleSignal, percentage float64) CopyDecision {
	if signal == nil || signal.Signal != domain.SignalBuy {
		return CopyDecision{Reason: "no buy signal"}
	}

	return CopyDecision{
		Proceed: true,
		Amount:  e.baseNotional * percentage / 100,
	}
}
