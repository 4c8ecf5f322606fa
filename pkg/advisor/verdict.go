package advisor

import (
	"context"
	"fmt"
	"strings"
)

// Urgency mirrors original_source's Urgency enum (brain/decision.py).
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyNormal Urgency = "normal"
	UrgencyLow    Urgency = "low"
)

// ParseUrgency parses a string into an Urgency, defaulting to UrgencyNormal
// for unrecognized values, grounded on Urgency.from_string.
func ParseUrgency(value string) Urgency {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(UrgencyHigh):
		return UrgencyHigh
	case string(UrgencyLow):
		return UrgencyLow
	default:
		return UrgencyNormal
	}
}

// Verdict is the advisor's structured trading decision, grounded on
// original_source's brain/decision.py AIDecision dataclass.
type Verdict struct {
	Execute    bool    `json:"execute" description:"whether to execute this trade"`
	Size       float64 `json:"size" description:"position size in USD, 0 if not executing"`
	Confidence float64 `json:"confidence" description:"confidence in this decision, 0.0 to 1.0"`
	Urgency    Urgency `json:"urgency" description:"high, normal, or low"`
	Reasoning  string  `json:"reasoning" description:"explanation for the decision"`
}

// RejectVerdict builds a rejection verdict, mirroring AIDecision.reject.
func RejectVerdict(reasoning string) Verdict {
	return Verdict{Execute: false, Size: 0, Confidence: 0, Urgency: UrgencyNormal, Reasoning: reasoning}
}

// ApproveVerdict builds an approval verdict, mirroring AIDecision.approve.
func ApproveVerdict(size, confidence float64, reasoning string, urgency Urgency) Verdict {
	if urgency == "" {
		urgency = UrgencyNormal
	}
	return Verdict{Execute: true, Size: size, Confidence: confidence, Urgency: urgency, Reasoning: reasoning}
}

// GetVerdict builds a chat request from a pre-rendered decision prompt and
// parses the advisor's structured response into a Verdict.
func GetVerdict(ctx context.Context, client Advisor, systemPrompt, userPrompt string) (Verdict, error) {
	req := &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	var verdict Verdict
	if _, err := client.ChatStructured(ctx, req, &verdict); err != nil {
		return Verdict{}, fmt.Errorf("advisor: get verdict: %w", err)
	}
	verdict.Urgency = ParseUrgency(string(verdict.Urgency))
	return verdict, nil
}
