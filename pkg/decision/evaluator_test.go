package decision_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/advisor"
	"copytrader/pkg/decision"
	"copytrader/pkg/decisioncontext"
)

type fakeAdvisor struct {
	verdict advisor.Verdict
	err     error
}

func (f *fakeAdvisor) Chat(ctx context.Context, req *advisor.ChatRequest) (*advisor.ChatResponse, error) {
	return nil, nil
}

func (f *fakeAdvisor) ChatStructured(ctx context.Context, req *advisor.ChatRequest, target interface{}) (interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := target.(*advisor.Verdict); ok {
		*v = f.verdict
	}
	return target, nil
}

func (f *fakeAdvisor) GetConfig() *advisor.Config { return &advisor.Config{} }

func (f *fakeAdvisor) Close() error { return nil }

func TestClaudeEvaluator_Evaluate_ReturnsVerdict(t *testing.T) {
	client := &fakeAdvisor{verdict: advisor.ApproveVerdict(50, 0.9, "elite wallet", advisor.UrgencyHigh)}
	evaluator := decision.NewClaudeEvaluator(client)

	v, err := evaluator.Evaluate(context.Background(), decisioncontext.Context{
		SignalWallet: "0xabc", SignalMarket: "m1", SignalSize: 100, SignalPrice: 0.5,
	})
	require.NoError(t, err)
	assert.True(t, v.Execute)
	assert.InDelta(t, 50, v.Size, 0.0001)
}

func TestClaudeEvaluator_Evaluate_DegradesToRejectionOnError(t *testing.T) {
	client := &fakeAdvisor{err: assertionError{"api down"}}
	evaluator := decision.NewClaudeEvaluator(client)

	v, err := evaluator.Evaluate(context.Background(), decisioncontext.Context{})
	require.NoError(t, err)
	assert.False(t, v.Execute)
	assert.Contains(t, v.Reasoning, "API error")
}

type assertionError struct{ msg string }

func (e assertionError) Error() string { return e.msg }
