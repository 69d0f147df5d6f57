package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 排序后: [-0.05, -0.03, -0.01, 0, 0.01, 0.02, 0.03, 0.04, 0.05, 0.06]
var fixedSample = []float64{0.01, -0.03, 0.02, -0.05, 0.04, -0.01, 0.03, 0.00, 0.05, 0.06}

func TestSummarizeFixedSample(t *testing.T) {
	out, err := Summarize(fixedSample, 0.90)
	require.NoError(t, err)

	// idx = floor(0.10 * 10) = 1
	assert.InDelta(t, 0.03, out.VaR, 1e-12)
	// CVaR = -avg(-0.05, -0.03)
	assert.InDelta(t, 0.04, out.CVaR, 1e-12)
	assert.InDelta(t, 0.012, out.Mean, 1e-12)
	assert.Greater(t, out.StdDev, 0.0)
	assert.GreaterOrEqual(t, out.CVaR, out.VaR)
}

func TestSummarizePercentileLadder(t *testing.T) {
	out, err := Summarize(fixedSample, 0.95)
	require.NoError(t, err)

	require.Len(t, out.Percentiles, len(LadderProbabilities))
	// idx = floor(p * 9)
	assert.InDelta(t, -0.05, out.Percentiles[0.01], 1e-12)
	assert.InDelta(t, 0.01, out.Percentiles[0.50], 1e-12)
	assert.InDelta(t, 0.05, out.Percentiles[0.99], 1e-12)

	// 阶梯单调不降
	prev := out.Percentiles[LadderProbabilities[0]]
	for _, p := range LadderProbabilities[1:] {
		assert.GreaterOrEqual(t, out.Percentiles[p], prev)
		prev = out.Percentiles[p]
	}
}

func TestVaRMonotoneInConfidence(t *testing.T) {
	v90, err := ValueAtRisk(fixedSample, 0.90)
	require.NoError(t, err)
	v95, err := ValueAtRisk(fixedSample, 0.95)
	require.NoError(t, err)
	v99, err := ValueAtRisk(fixedSample, 0.99)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, v95, v90)
	assert.GreaterOrEqual(t, v99, v95)
}

func TestCVaRDominatesVaR(t *testing.T) {
	for _, c := range []float64{0.90, 0.95, 0.99} {
		v, err := ValueAtRisk(fixedSample, c)
		require.NoError(t, err)
		cv, err := ConditionalValueAtRisk(fixedSample, c)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, cv, v, "confidence %v", c)
	}
}

func TestSummarizeZeroVarianceSample(t *testing.T) {
	flat := []float64{0.01, 0.01, 0.01, 0.01, 0.01}
	out, err := Summarize(flat, 0.95)
	require.NoError(t, err)

	assert.Zero(t, out.StdDev)
	assert.Zero(t, out.Skewness)
	assert.Zero(t, out.ExcessKurtosis)
	assert.InDelta(t, -0.01, out.VaR, 1e-12)
}

func TestSummarizeRejectsDegenerateInput(t *testing.T) {
	_, err := Summarize([]float64{0.01}, 0.95)
	assert.ErrorIs(t, err, ErrNumericDegeneracy)

	_, err = Summarize(nil, 0.95)
	assert.ErrorIs(t, err, ErrNumericDegeneracy)

	_, err = Summarize(fixedSample, 1.0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Summarize(fixedSample, 0.0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValueAtRiskEdgeCases(t *testing.T) {
	_, err := ValueAtRisk(nil, 0.95)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ValueAtRisk(fixedSample, 1.2)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// 单样本对 VaR 是合法的：索引被钳制到 0
	v, err := ValueAtRisk([]float64{-0.02}, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, v, 1e-12)
}

func TestPercentilesStandalone(t *testing.T) {
	_, err := Percentiles(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	out, err := Percentiles(fixedSample)
	require.NoError(t, err)
	assert.Len(t, out, len(LadderProbabilities))
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	sample := append([]float64(nil), fixedSample...)
	_, err := Summarize(sample, 0.95)
	require.NoError(t, err)
	assert.Equal(t, fixedSample, sample)
}
