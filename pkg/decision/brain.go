// Package decision implements the C8 decision brain: the orchestrator that
// takes a trade signal through context assembly, AI evaluation, risk
// validation, and execution. Grounded on original_source's
// core/brain/orchestrator.py DecisionBrain.
package decision

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/pkg/advisor"
	"copytrader/pkg/decisioncontext"
	"copytrader/pkg/journal"
	"copytrader/pkg/signal"
)

// ExecutionResult is the outcome of attempting to execute a validated
// decision, grounded on original_source's execution/paper.py
// ExecutionResult.
type ExecutionResult struct {
	Success       bool
	ExecutedSize  float64
	ExecutedPrice float64
	PaperMode     bool
	Message       string
	VenueOrderID  string
	ExecutedAt    time.Time
}

// ContextBuilder builds a DecisionContext from an incoming trade signal,
// grounded on ContextBuilderProtocol.
type ContextBuilder interface {
	Build(ctx context.Context, sig signal.TradeSignal, signalType decisioncontext.SignalType, opts decisioncontext.BuildOptions) (decisioncontext.Context, error)
}

// Evaluator gets an AI decision for an assembled context, grounded on
// ClaudeClientProtocol.
type Evaluator interface {
	Evaluate(ctx context.Context, dc decisioncontext.Context) (advisor.Verdict, error)
}

// RiskValidator validates and potentially adjusts an AI decision, grounded
// on RiskManagerProtocol.
type RiskValidator interface {
	ValidateSlippage(verdict advisor.Verdict, spreadPct float64) advisor.Verdict
	Validate(ctx context.Context, verdict advisor.Verdict) (advisor.Verdict, error)
}

// Executor executes an approved trade, grounded on ExecutorProtocol.
type Executor interface {
	Execute(ctx context.Context, sig signal.TradeSignal, verdict advisor.Verdict) (ExecutionResult, error)
}

// Brain coordinates the full signal-to-execution pipeline, grounded on
// DecisionBrain.
type Brain struct {
	contextBuilder ContextBuilder
	evaluator      Evaluator
	riskValidator  RiskValidator
	executor       Executor
	journal        *journal.Writer
}

// NewBrain wires the four pipeline stages into a Brain.
func NewBrain(contextBuilder ContextBuilder, evaluator Evaluator, riskValidator RiskValidator, executor Executor) *Brain {
	return &Brain{
		contextBuilder: contextBuilder,
		evaluator:      evaluator,
		riskValidator:  riskValidator,
		executor:       executor,
	}
}

// WithJournal attaches a decision journal writer; every Process call then
// records one DecisionRecord regardless of outcome. Returns the Brain for
// chaining, mirroring decisioncontext.Builder.WithFilters.
func (b *Brain) WithJournal(w *journal.Writer) *Brain {
	b.journal = w
	return b
}

// Process runs a signal through the full pipeline: build context, evaluate,
// slippage pre-check, risk-validate, execute, journal. Grounded on
// DecisionBrain.process, including the exact "Trade rejected: %s" rejection
// message.
func (b *Brain) Process(ctx context.Context, sig signal.TradeSignal, signalType decisioncontext.SignalType) (ExecutionResult, error) {
	logx.WithContext(ctx).Infof("decision: processing signal wallet=%s market=%s side=%s size=%.4f",
		shorten(sig.Wallet), sig.MarketID, sig.Side, sig.Size)

	dc, err := b.contextBuilder.Build(ctx, sig, signalType, decisioncontext.BuildOptions{})
	if err != nil {
		b.recordJournal(ctx, sig, signalType, advisor.Verdict{}, nil, ExecutionResult{}, err)
		return ExecutionResult{}, fmt.Errorf("decision: build context: %w", err)
	}
	logx.WithContext(ctx).Debugf("decision: context built for market=%s", sig.MarketID)

	verdict, err := b.evaluator.Evaluate(ctx, dc)
	if err != nil {
		b.recordJournal(ctx, sig, signalType, advisor.Verdict{}, nil, ExecutionResult{}, err)
		return ExecutionResult{}, fmt.Errorf("decision: evaluate: %w", err)
	}
	logx.WithContext(ctx).Infof("decision: ai verdict execute=%v size=%.4f confidence=%.2f",
		verdict.Execute, verdict.Size, verdict.Confidence)

	slippageChecked := b.riskValidator.ValidateSlippage(verdict, dc.MarketSpread*100)
	if !slippageChecked.Execute && verdict.Execute {
		logx.WithContext(ctx).Infof("decision: trade rejected by slippage guard: %s", slippageChecked.Reasoning)
		result := ExecutionResult{
			Success:   false,
			PaperMode: true,
			Message:   fmt.Sprintf("Trade rejected: %s", slippageChecked.Reasoning),
		}
		b.recordJournal(ctx, sig, signalType, verdict, &slippageChecked, result, nil)
		return result, nil
	}

	validated, err := b.riskValidator.Validate(ctx, slippageChecked)
	if err != nil {
		b.recordJournal(ctx, sig, signalType, verdict, nil, ExecutionResult{}, err)
		return ExecutionResult{}, fmt.Errorf("decision: validate: %w", err)
	}

	if !validated.Execute {
		logx.WithContext(ctx).Infof("decision: trade rejected by risk manager: %s", validated.Reasoning)
		result := ExecutionResult{
			Success:       false,
			ExecutedSize:  0,
			ExecutedPrice: 0,
			PaperMode:     true,
			Message:       fmt.Sprintf("Trade rejected: %s", validated.Reasoning),
		}
		b.recordJournal(ctx, sig, signalType, verdict, &validated, result, nil)
		return result, nil
	}

	result, err := b.executor.Execute(ctx, sig, validated)
	if err != nil {
		b.recordJournal(ctx, sig, signalType, verdict, &validated, ExecutionResult{}, err)
		return ExecutionResult{}, fmt.Errorf("decision: execute: %w", err)
	}
	logx.WithContext(ctx).Infof("decision: execution result success=%v size=%.4f price=%.4f",
		result.Success, result.ExecutedSize, result.ExecutedPrice)
	b.recordJournal(ctx, sig, signalType, verdict, &validated, result, nil)
	return result, nil
}

// recordJournal writes a DecisionRecord if a journal writer is attached.
// Failures to write are logged, never propagated: the journal is an audit
// trail, not a pipeline dependency.
func (b *Brain) recordJournal(ctx context.Context, sig signal.TradeSignal, signalType decisioncontext.SignalType, verdict advisor.Verdict, riskAdjusted *advisor.Verdict, result ExecutionResult, procErr error) {
	if b.journal == nil {
		return
	}
	rec := &journal.DecisionRecord{
		Wallet:        sig.Wallet,
		MarketID:      sig.MarketID,
		SignalType:    string(signalType),
		SignalSide:    string(sig.Side),
		SignalSize:    sig.Size,
		Executed:      result.Success,
		ExecutedSize:  result.ExecutedSize,
		ExecutedPrice: result.ExecutedPrice,
		PaperMode:     result.PaperMode,
		Message:       result.Message,
	}
	if verdict != (advisor.Verdict{}) {
		rec.AdvisorVerdict = map[string]any{
			"execute": verdict.Execute, "size": verdict.Size,
			"confidence": verdict.Confidence, "urgency": verdict.Urgency, "reasoning": verdict.Reasoning,
		}
	}
	if riskAdjusted != nil {
		rec.RiskAdjusted = map[string]any{
			"execute": riskAdjusted.Execute, "size": riskAdjusted.Size,
			"confidence": riskAdjusted.Confidence, "reasoning": riskAdjusted.Reasoning,
		}
	}
	if procErr != nil {
		rec.ErrorMessage = procErr.Error()
	}
	if _, err := b.journal.WriteDecision(rec); err != nil {
		logx.WithContext(ctx).Errorf("decision: write journal record: %v", err)
	}
}

func shorten(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:10]
}
