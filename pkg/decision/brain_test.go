package decision_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/advisor"
	"copytrader/pkg/decision"
	"copytrader/pkg/decisioncontext"
	"copytrader/pkg/journal"
	"copytrader/pkg/signal"
	"copytrader/pkg/venue"
)

type fakeContextBuilder struct {
	dc  decisioncontext.Context
	err error
}

func (f *fakeContextBuilder) Build(ctx context.Context, sig signal.TradeSignal, signalType decisioncontext.SignalType, opts decisioncontext.BuildOptions) (decisioncontext.Context, error) {
	return f.dc, f.err
}

type fakeEvaluator struct {
	verdict advisor.Verdict
	err     error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, dc decisioncontext.Context) (advisor.Verdict, error) {
	return f.verdict, f.err
}

type fakeRiskValidator struct {
	verdict           advisor.Verdict
	err               error
	maxSlippagePct    float64
	slippageRejectMsg string
}

func (f *fakeRiskValidator) Validate(ctx context.Context, verdict advisor.Verdict) (advisor.Verdict, error) {
	if f.err != nil {
		return advisor.Verdict{}, f.err
	}
	return f.verdict, nil
}

func (f *fakeRiskValidator) ValidateSlippage(verdict advisor.Verdict, spreadPct float64) advisor.Verdict {
	if !verdict.Execute {
		return verdict
	}
	if f.maxSlippagePct > 0 && spreadPct > f.maxSlippagePct {
		msg := f.slippageRejectMsg
		if msg == "" {
			msg = "slippage_exceeded"
		}
		return advisor.RejectVerdict(msg)
	}
	return verdict
}

type fakeExecutor struct {
	result  decision.ExecutionResult
	err     error
	called  bool
}

func (f *fakeExecutor) Execute(ctx context.Context, sig signal.TradeSignal, verdict advisor.Verdict) (decision.ExecutionResult, error) {
	f.called = true
	return f.result, f.err
}

func testSignal() signal.TradeSignal {
	return signal.TradeSignal{
		Wallet:     "0x1234567890abcdef",
		MarketID:   "market-1",
		Side:       venue.SideYes,
		Action:     venue.ActionBuy,
		Price:      0.5,
		Size:       100,
		DetectedAt: time.Now(),
	}
}

func TestBrain_Process_ExecutesApprovedTrade(t *testing.T) {
	evaluator := &fakeEvaluator{verdict: advisor.ApproveVerdict(100, 0.8, "good setup", advisor.UrgencyNormal)}
	riskValidator := &fakeRiskValidator{verdict: advisor.ApproveVerdict(100, 0.8, "good setup", advisor.UrgencyNormal)}
	executor := &fakeExecutor{result: decision.ExecutionResult{Success: true, ExecutedSize: 100, ExecutedPrice: 0.5}}

	brain := decision.NewBrain(&fakeContextBuilder{}, evaluator, riskValidator, executor)
	result, err := brain.Process(context.Background(), testSignal(), decisioncontext.SignalTypeCopyTrade)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, executor.called)
}

func TestBrain_Process_RiskRejectionShortCircuitsExecution(t *testing.T) {
	evaluator := &fakeEvaluator{verdict: advisor.ApproveVerdict(100, 0.8, "good setup", advisor.UrgencyNormal)}
	riskValidator := &fakeRiskValidator{verdict: advisor.RejectVerdict("exposure limit exceeded")}
	executor := &fakeExecutor{}

	brain := decision.NewBrain(&fakeContextBuilder{}, evaluator, riskValidator, executor)
	result, err := brain.Process(context.Background(), testSignal(), decisioncontext.SignalTypeCopyTrade)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Trade rejected: exposure limit exceeded", result.Message)
	assert.True(t, result.PaperMode)
	assert.False(t, executor.called)
}

func TestBrain_Process_AIRejectionShortCircuitsExecution(t *testing.T) {
	rejected := advisor.RejectVerdict("low confidence")
	evaluator := &fakeEvaluator{verdict: rejected}
	riskValidator := &fakeRiskValidator{verdict: rejected}
	executor := &fakeExecutor{}

	brain := decision.NewBrain(&fakeContextBuilder{}, evaluator, riskValidator, executor)
	result, err := brain.Process(context.Background(), testSignal(), decisioncontext.SignalTypeCopyTrade)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, executor.called)
}

func TestBrain_Process_SlippageGuardRejectsWideSpreadBeforeRiskValidate(t *testing.T) {
	evaluator := &fakeEvaluator{verdict: advisor.ApproveVerdict(100, 0.8, "good setup", advisor.UrgencyNormal)}
	riskValidator := &fakeRiskValidator{maxSlippagePct: 2.0, slippageRejectMsg: "slippage_exceeded"}
	executor := &fakeExecutor{}

	brain := decision.NewBrain(&fakeContextBuilder{dc: decisioncontext.Context{MarketSpread: 0.05}}, evaluator, riskValidator, executor)
	result, err := brain.Process(context.Background(), testSignal(), decisioncontext.SignalTypeCopyTrade)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Trade rejected: slippage_exceeded", result.Message)
	assert.True(t, result.PaperMode)
	assert.False(t, executor.called)
}

func TestBrain_Process_WritesJournalRecordOnSuccess(t *testing.T) {
	dir := t.TempDir()
	evaluator := &fakeEvaluator{verdict: advisor.ApproveVerdict(100, 0.8, "good setup", advisor.UrgencyNormal)}
	riskValidator := &fakeRiskValidator{verdict: advisor.ApproveVerdict(100, 0.8, "good setup", advisor.UrgencyNormal)}
	executor := &fakeExecutor{result: decision.ExecutionResult{Success: true, ExecutedSize: 100, ExecutedPrice: 0.5}}

	brain := decision.NewBrain(&fakeContextBuilder{}, evaluator, riskValidator, executor).
		WithJournal(journal.NewWriter(dir))
	_, err := brain.Process(context.Background(), testSignal(), decisioncontext.SignalTypeCopyTrade)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, filepath.Base(entries[0].Name()), "decision_")
}

func TestBrain_Process_WritesJournalRecordOnRejection(t *testing.T) {
	dir := t.TempDir()
	evaluator := &fakeEvaluator{verdict: advisor.ApproveVerdict(100, 0.8, "good setup", advisor.UrgencyNormal)}
	riskValidator := &fakeRiskValidator{verdict: advisor.RejectVerdict("exposure limit exceeded")}
	executor := &fakeExecutor{}

	brain := decision.NewBrain(&fakeContextBuilder{}, evaluator, riskValidator, executor).
		WithJournal(journal.NewWriter(dir))
	_, err := brain.Process(context.Background(), testSignal(), decisioncontext.SignalTypeCopyTrade)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
