package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDistributionDefaults(t *testing.T) {
	dist, err := NewDistribution(DistributionNormal, nil)
	require.NoError(t, err)
	normal, ok := dist.(*NormalDistribution)
	require.True(t, ok)
	assert.Equal(t, 0.0, normal.Mean)
	assert.Equal(t, 1.0, normal.StdDev)

	dist, err = NewDistribution("", nil)
	require.NoError(t, err)
	assert.Equal(t, DistributionNormal, dist.Kind())

	dist, err = NewDistribution(DistributionStudentT, nil)
	require.NoError(t, err)
	st, ok := dist.(*StudentTDistribution)
	require.True(t, ok)
	assert.Equal(t, 5, st.DegreesOfFreedom)

	dist, err = NewDistribution(DistributionGARCH, nil)
	require.NoError(t, err)
	garch, ok := dist.(*GARCHDistribution)
	require.True(t, ok)
	assert.InDelta(t, 0.002, garch.CurrentVariance(), 1e-12)
}

func TestNewDistributionUnknownKind(t *testing.T) {
	_, err := NewDistribution("CAUCHY", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalSampleMoments(t *testing.T) {
	dist := &NormalDistribution{Mean: 0, StdDev: 1}
	src := NewSource(42)

	const n = 20000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := dist.Sample(src)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	assert.InDelta(t, 0.0, mean, 0.05)
	assert.InDelta(t, 1.0, variance, 0.05)
}

func TestNormalSampleShock(t *testing.T) {
	dist := &NormalDistribution{Mean: 0.05, StdDev: 0.2}
	assert.InDelta(t, 0.05+0.2*1.5, dist.SampleShock(1.5), 1e-15)
	assert.InDelta(t, 0.05-0.2*1.5, dist.SampleShock(-1.5), 1e-15)
}

func TestNormalUpdateParameters(t *testing.T) {
	dist := &NormalDistribution{}
	assert.ErrorIs(t, dist.UpdateParameters([]float64{0.1}), ErrInvalidInput)
	assert.ErrorIs(t, dist.UpdateParameters([]float64{0.1, -0.2}), ErrInvalidInput)
	require.NoError(t, dist.UpdateParameters([]float64{0.1, 0.2}))
	assert.Equal(t, 0.1, dist.Mean)
	assert.Equal(t, 0.2, dist.StdDev)
}

func TestStudentTDegreesOfFreedomMustBeIntegral(t *testing.T) {
	dist := &StudentTDistribution{}
	assert.ErrorIs(t, dist.UpdateParameters([]float64{2.5, 0, 1}), ErrInvalidInput)
	assert.ErrorIs(t, dist.UpdateParameters([]float64{0.5, 0, 1}), ErrInvalidInput)
	assert.ErrorIs(t, dist.UpdateParameters([]float64{5, 0, -1}), ErrInvalidInput)

	require.NoError(t, dist.UpdateParameters([]float64{5, 0.01, 0.3}))
	assert.Equal(t, 5, dist.DegreesOfFreedom)
	assert.Equal(t, 0.01, dist.Location)
	assert.Equal(t, 0.3, dist.Scale)
}

func TestStudentTSampleShockIsLinear(t *testing.T) {
	dist := &StudentTDistribution{DegreesOfFreedom: 5, Location: 0.01, Scale: 0.3}
	assert.InDelta(t, 0.01+0.3*2.0, dist.SampleShock(2.0), 1e-15)
}

func TestStudentTSampleDeterminism(t *testing.T) {
	dist := &StudentTDistribution{DegreesOfFreedom: 4, Location: 0, Scale: 1}
	a := NewSource(11)
	b := NewSource(11)
	for i := 0; i < 50; i++ {
		va := dist.Sample(a)
		vb := dist.Sample(b)
		assert.Equal(t, va, vb)
		assert.False(t, math.IsNaN(va))
	}
}

func TestGARCHParameterValidation(t *testing.T) {
	_, err := NewGARCHDistribution(0, 0.1, 0.85)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewGARCHDistribution(0.0001, -0.1, 0.85)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewGARCHDistribution(0.0001, 0.2, 0.8)
	assert.ErrorIs(t, err, ErrNumericDegeneracy)

	_, err = NewGARCHDistribution(0.0001)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGARCHUnconditionalVariance(t *testing.T) {
	garch, err := NewGARCHDistribution(0.0001, 0.1, 0.85)
	require.NoError(t, err)
	assert.InDelta(t, 0.002, garch.CurrentVariance(), 1e-12)
}

func TestGARCHVarianceRecursion(t *testing.T) {
	garch, err := NewGARCHDistribution(0.0001, 0.1, 0.85)
	require.NoError(t, err)

	v0 := garch.CurrentVariance()
	r := garch.SampleShock(2.0)
	assert.InDelta(t, math.Sqrt(v0)*2.0, r, 1e-12)
	assert.InDelta(t, 0.0001+0.1*r*r+0.85*v0, garch.CurrentVariance(), 1e-12)
}

func TestGARCHRejectsMidPathParameterChange(t *testing.T) {
	garch, err := NewGARCHDistribution(0.0001, 0.1, 0.85)
	require.NoError(t, err)

	garch.SampleShock(1.0)
	assert.ErrorIs(t, garch.UpdateParameters([]float64{0.0002, 0.1, 0.85}), ErrInvalidInput)

	garch.Reset()
	assert.NoError(t, garch.UpdateParameters([]float64{0.0002, 0.1, 0.85}))
}

func TestGARCHResetAndClone(t *testing.T) {
	garch, err := NewGARCHDistribution(0.0001, 0.1, 0.85)
	require.NoError(t, err)

	garch.SampleShock(3.0)
	assert.Greater(t, garch.CurrentVariance(), 0.002)

	clone := garch.Clone().(*GARCHDistribution)
	assert.InDelta(t, 0.002, clone.CurrentVariance(), 1e-12)

	garch.Reset()
	assert.InDelta(t, 0.002, garch.CurrentVariance(), 1e-12)
}

func TestGARCHVolatilityClustering(t *testing.T) {
	garch, err := NewGARCHDistribution(0.0001, 0.1, 0.85)
	require.NoError(t, err)

	// 大冲击抬升下一期条件方差
	before := garch.CurrentVariance()
	garch.SampleShock(4.0)
	assert.Greater(t, garch.CurrentVariance(), before)
}
