package decision

import (
	"context"
	"fmt"
	"strings"

	"copytrader/pkg/advisor"
	"copytrader/pkg/decisioncontext"
)

// systemPrompt is the advisor's standing instructions, grounded verbatim on
// original_source's brain/claude.py SYSTEM_PROMPT. The JSON response-format
// instructions are dropped since advisor.ChatStructured enforces the schema
// directly rather than asking the model to free-form emit JSON.
const systemPrompt = `You are a trading assistant that evaluates copy trade signals.

Your goal: COPY PROFITABLE TRADERS while managing risk.

WALLET PERFORMANCE SCORING (use this to determine trust level):
- ELITE (>20 trades, >60% win rate, >5% ROI): Trust level 90% - copy up to 80% size
- PROVEN (>10 trades, >55% win rate, >0% ROI): Trust level 70% - copy up to 60% size
- MODERATE (5-10 trades, >50% win rate): Trust level 50% - copy up to 40% size
- NEW (1-5 trades): Trust level 30% - copy up to 25% size to test
- UNPROVEN (0 trades): Trust level 20% - copy 10-15% size to discover

MARKET CONDITIONS:
- Liquidity >$5000: Good - no adjustment needed
- Liquidity $1000-$5000: Reduce size by 25%
- Liquidity <$1000: REJECT - too risky to enter/exit
- Spread >5%: REJECT - too expensive

RISK RULES:
- Never exceed remaining daily loss budget
- Scale position size by wallet trust level
- Higher spread = lower confidence

Calculate final size as: signal_size * trust_level * liquidity_factor`

// ClaudeEvaluator implements Evaluator by rendering a DecisionContext into
// a prompt and asking the advisor for a structured Verdict, grounded on
// ClaudeClient.evaluate/_build_prompt.
type ClaudeEvaluator struct {
	advisor advisor.Advisor
}

// NewClaudeEvaluator wraps an advisor.Advisor as an Evaluator.
func NewClaudeEvaluator(client advisor.Advisor) *ClaudeEvaluator {
	return &ClaudeEvaluator{advisor: client}
}

// Evaluate renders the context into a prompt and returns the advisor's
// verdict. API or parse failures degrade to a rejection rather than an
// error, mirroring ClaudeClient.evaluate's exception handling.
func (e *ClaudeEvaluator) Evaluate(ctx context.Context, dc decisioncontext.Context) (advisor.Verdict, error) {
	prompt := buildPrompt(dc)
	verdict, err := advisor.GetVerdict(ctx, e.advisor, systemPrompt, prompt)
	if err != nil {
		return advisor.RejectVerdict(fmt.Sprintf("API error: %s", err)), nil
	}
	return verdict, nil
}

// buildPrompt renders a DecisionContext into the user-turn prompt, grounded
// verbatim on ClaudeClient._build_prompt's section layout.
func buildPrompt(dc decisioncontext.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate this trade signal and decide whether to execute:\n\n")
	fmt.Fprintf(&b, "SIGNAL:\n")
	fmt.Fprintf(&b, "- Wallet: %s\n", dc.SignalWallet)
	fmt.Fprintf(&b, "- Market: %s\n", dc.SignalMarket)
	fmt.Fprintf(&b, "- Side: %s\n", dc.SignalSide)
	fmt.Fprintf(&b, "- Size: $%.2f\n", dc.SignalSize)
	fmt.Fprintf(&b, "- Price: %.4f\n\n", dc.SignalPrice)

	fmt.Fprintf(&b, "WALLET PERFORMANCE:\n")
	fmt.Fprintf(&b, "- Win Rate: %.1f%%\n", dc.WalletWinRate*100)
	fmt.Fprintf(&b, "- Avg ROI: %.1f%%\n", dc.WalletAvgROI*100)
	fmt.Fprintf(&b, "- Total Trades: %d\n", dc.WalletTotalTrades)
	fmt.Fprintf(&b, "- Recent Performance: %.1f%%\n\n", dc.WalletRecentPerformance*100)

	fmt.Fprintf(&b, "MARKET CONDITIONS:\n")
	fmt.Fprintf(&b, "- Liquidity: $%.2f\n", dc.MarketLiquidity)
	fmt.Fprintf(&b, "- Spread: %.2f%%\n\n", dc.MarketSpread*100)

	fmt.Fprintf(&b, "RISK STATE:\n")
	fmt.Fprintf(&b, "- Daily P&L: $%.2f\n", dc.RiskDailyPnL)
	fmt.Fprintf(&b, "- Open Exposure: $%.2f\n", dc.RiskOpenExposure)
	fmt.Fprintf(&b, "- Max Daily Loss: $%.2f\n", dc.RiskMaxDailyLoss)
	fmt.Fprintf(&b, "- Remaining Budget: $%.2f\n\n", dc.RiskMaxDailyLoss+dc.RiskDailyPnL)

	if dc.ArbitrageSpread != nil {
		fmt.Fprintf(&b, "ARBITRAGE:\n- Spread: %.4f\n- Direction: %s\n\n", *dc.ArbitrageSpread, dc.ArbitrageDirection)
	}

	fmt.Fprintf(&b, "Provide your decision as JSON.")
	return b.String()
}
