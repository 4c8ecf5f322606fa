package pricelag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"copytrader/pkg/pricelag"
)

func TestDetector_CalculatePriceChange(t *testing.T) {
	d := pricelag.NewDetector(0, 0)

	assert.InDelta(t, 0.05, d.CalculatePriceChange(100, 105), 0.0001)
	assert.InDelta(t, -0.05, d.CalculatePriceChange(100, 95), 0.0001)
	assert.Equal(t, float64(0), d.CalculatePriceChange(0, 105))
}

func TestDetector_DetermineExpectedDirection(t *testing.T) {
	d := pricelag.NewDetector(0.02, 0)

	assert.Equal(t, pricelag.DirectionUp, d.DetermineExpectedDirection(0.03))
	assert.Equal(t, pricelag.DirectionDown, d.DetermineExpectedDirection(-0.03))
	assert.Equal(t, pricelag.DirectionNeutral, d.DetermineExpectedDirection(0.01))
}

func TestDetector_CalculateConfidence(t *testing.T) {
	d := pricelag.NewDetector(0, 0)

	assert.InDelta(t, 0.3, d.CalculateConfidence(0.02), 0.0001)
	assert.InDelta(t, 1.0, d.CalculateConfidence(0.15), 0.0001)
	assert.InDelta(t, 0.3, d.CalculateConfidence(0.001), 0.0001)
}

func TestDetector_DetectLag_FindsLaggingMarketOnUpMove(t *testing.T) {
	d := pricelag.NewDetector(0.02, 0.10)

	// 4% Binance move up; market probability barely moved off the 0.5
	// baseline, so it is lagging the expected upward repricing.
	opp := d.DetectLag(0.04, 0.51, 0.5)
	assert := assert.New(t)
	if assert.NotNil(opp) {
		assert.Equal(pricelag.DirectionUp, opp.ExpectedDirection)
		assert.Equal("YES", opp.Side())
	}
}

func TestDetector_DetectLag_NoOpportunityWhenMarketAlreadyMoved(t *testing.T) {
	d := pricelag.NewDetector(0.02, 0.10)

	// Market probability already moved the full magnitude of the Binance
	// change, so it isn't lagging.
	opp := d.DetectLag(0.04, 0.55, 0.5)
	assert.Nil(t, opp)
}

func TestDetector_DetectLag_NeutralMoveNeverLags(t *testing.T) {
	d := pricelag.NewDetector(0.02, 0.10)

	opp := d.DetectLag(0.005, 0.50, 0.5)
	assert.Nil(t, opp)
}

func TestDetector_DetectLag_DownMoveSidesNo(t *testing.T) {
	d := pricelag.NewDetector(0.02, 0.10)

	opp := d.DetectLag(-0.04, 0.49, 0.5)
	if assert.NotNil(t, opp) {
		assert.Equal(t, pricelag.DirectionDown, opp.ExpectedDirection)
		assert.Equal(t, "NO", opp.Side())
	}
}
