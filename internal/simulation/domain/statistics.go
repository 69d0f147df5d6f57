package domain

import (
	"fmt"
	"math"
	"slices"
)

// LadderProbabilities 百分位阶梯的固定概率点
var LadderProbabilities = []float64{0.01, 0.05, 0.10, 0.25, 0.50, 0.75, 0.90, 0.95, 0.99}

// Summarize 计算样本的完整风险统计量。
// 均值、百分位、VaR、CVaR 要求 n >= 1；方差类指标要求 n >= 2。
// 全部是排序后样本的确定性函数，本组件不含随机性。
func Summarize(sample []float64, confidenceLevel float64) (RiskStatistics, error) {
	var out RiskStatistics
	if len(sample) < 2 {
		return out, fmt.Errorf("%w: variance-based statistics require at least 2 samples, got %d",
			ErrNumericDegeneracy, len(sample))
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return out, fmt.Errorf("%w: confidence level must be in (0,1), got %v",
			ErrInvalidInput, confidenceLevel)
	}

	n := float64(len(sample))

	var sum float64
	for _, v := range sample {
		sum += v
	}
	mean := sum / n

	var variance float64
	for _, v := range sample {
		d := v - mean
		variance += d * d
	}
	variance /= n - 1
	stdDev := math.Sqrt(variance)

	// 退化样本（零方差）的标准化残差全为零，偏度/峰度按零处理而不是 NaN
	var skew, kurt float64
	if stdDev > 0 {
		var sum3, sum4 float64
		for _, v := range sample {
			z := (v - mean) / stdDev
			z2 := z * z
			sum3 += z2 * z
			sum4 += z2 * z2
		}
		skew = sum3 / n
		kurt = sum4/n - 3.0
	}

	sorted := slices.Clone(sample)
	slices.Sort(sorted)

	out.Mean = mean
	out.StdDev = stdDev
	out.Skewness = skew
	out.ExcessKurtosis = kurt
	out.Percentiles = percentilesOfSorted(sorted)
	out.VaR = varOfSorted(sorted, confidenceLevel)
	out.CVaR = cvarOfSorted(sorted, confidenceLevel)
	return out, nil
}

// ValueAtRisk 计算给定置信度下的 VaR（正数损失）
func ValueAtRisk(sample []float64, confidenceLevel float64) (float64, error) {
	if len(sample) == 0 {
		return 0, fmt.Errorf("%w: empty sample", ErrInvalidInput)
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return 0, fmt.Errorf("%w: confidence level must be in (0,1), got %v",
			ErrInvalidInput, confidenceLevel)
	}
	sorted := slices.Clone(sample)
	slices.Sort(sorted)
	return varOfSorted(sorted, confidenceLevel), nil
}

// ConditionalValueAtRisk 计算给定置信度下的 CVaR / 预期亏损（正数损失）
func ConditionalValueAtRisk(sample []float64, confidenceLevel float64) (float64, error) {
	if len(sample) == 0 {
		return 0, fmt.Errorf("%w: empty sample", ErrInvalidInput)
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return 0, fmt.Errorf("%w: confidence level must be in (0,1), got %v",
			ErrInvalidInput, confidenceLevel)
	}
	sorted := slices.Clone(sample)
	slices.Sort(sorted)
	return cvarOfSorted(sorted, confidenceLevel), nil
}

// Percentiles 计算固定概率阶梯上的分位值（0 索引最近秩法）
func Percentiles(sample []float64) (map[float64]float64, error) {
	if len(sample) == 0 {
		return nil, fmt.Errorf("%w: empty sample", ErrInvalidInput)
	}
	sorted := slices.Clone(sample)
	slices.Sort(sorted)
	return percentilesOfSorted(sorted), nil
}

func percentilesOfSorted(sorted []float64) map[float64]float64 {
	out := make(map[float64]float64, len(LadderProbabilities))
	for _, p := range LadderProbabilities {
		idx := clampIndex(int(math.Floor(p*float64(len(sorted)-1))), len(sorted))
		out[p] = sorted[idx]
	}
	return out
}

func varOfSorted(sorted []float64, confidenceLevel float64) float64 {
	idx := clampIndex(int(math.Floor((1-confidenceLevel)*float64(len(sorted)))), len(sorted))
	return -sorted[idx]
}

func cvarOfSorted(sorted []float64, confidenceLevel float64) float64 {
	idx := clampIndex(int(math.Floor((1-confidenceLevel)*float64(len(sorted)))), len(sorted))
	var sum float64
	count := 0
	for i := 0; i <= idx; i++ {
		sum += sorted[i]
		count++
	}
	if count == 0 {
		return varOfSorted(sorted, confidenceLevel)
	}
	return -sum / float64(count)
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
