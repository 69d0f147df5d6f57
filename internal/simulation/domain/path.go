package domain

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// SimulatePath 为单个资产生成一条收益路径及对应的价格投影。
// 资产带有 n>=2 的历史收益样本时用样本均值与 (n-1) 方差标定分布；
// 恰好 1 个样本方差无定义，是确定性的失败；无样本时退回显式 mu/sigma。
// 成功时路径长度恒等于 cfg.PathCount，价格 = initialPrice * exp(return)。
func SimulatePath(asset AssetSpec, cfg SimulationConfig, dist Distribution, src *Source) (ReturnPath, []float64, error) {
	if cfg.PathCount <= 0 {
		return nil, nil, fmt.Errorf("%w: path count must be positive, got %d", ErrInvalidInput, cfg.PathCount)
	}
	if dist == nil || src == nil {
		return nil, nil, fmt.Errorf("%w: distribution and random source are required", ErrInvalidInput)
	}

	if err := calibrateFromAsset(asset, dist); err != nil {
		return nil, nil, err
	}

	// GARCH 的递归方差是路径局部状态，新路径从无条件方差重新出发
	dist.Reset()

	returns := make(ReturnPath, cfg.PathCount)
	if cfg.Antithetic && dist.Kind() != DistributionGARCH {
		// 对偶变量：成对使用 (z, -z) 冲击，降低估计方差。
		// GARCH 的串行方差递归在符号翻转下不再对偶，保持普通采样。
		for i := 0; i < cfg.PathCount; i += 2 {
			z := standardNormal(src)
			returns[i] = dist.SampleShock(z)
			if i+1 < cfg.PathCount {
				returns[i+1] = dist.SampleShock(-z)
			}
		}
	} else {
		for i := range returns {
			returns[i] = dist.Sample(src)
		}
	}

	if cfg.ControlVariate {
		applyMeanControlVariate(returns, dist)
	}

	prices := make([]float64, cfg.PathCount)
	for i, r := range returns {
		prices[i] = asset.InitialPrice * math.Exp(r)
	}
	return returns, prices, nil
}

// calibrateFromAsset 从历史样本或显式参数标定分布的位置/尺度
func calibrateFromAsset(asset AssetSpec, dist Distribution) error {
	n := len(asset.HistoricalReturns)
	switch {
	case n >= 2:
		mean, err := stats.Mean(asset.HistoricalReturns)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternalFailure, err)
		}
		variance, err := stats.SampleVariance(asset.HistoricalReturns)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternalFailure, err)
		}
		dist.Calibrate(mean, math.Sqrt(variance))
	case n == 1:
		return fmt.Errorf("%w: historical sample of size 1 has undefined variance", ErrNumericDegeneracy)
	default:
		if dist.Kind() != DistributionGARCH && asset.Volatility <= 0 {
			return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidInput, asset.Volatility)
		}
		dist.Calibrate(asset.ExpectedReturn, asset.Volatility)
	}
	return nil
}

// applyMeanControlVariate 把样本均值平移到分布的理论均值。
// GARCH 冲击的理论均值为零，Student-t 在 df>1 时均值等于 location。
func applyMeanControlVariate(returns ReturnPath, dist Distribution) {
	var theoretical float64
	switch d := dist.(type) {
	case *NormalDistribution:
		theoretical = d.Mean
	case *StudentTDistribution:
		if d.DegreesOfFreedom <= 1 {
			return // 均值无定义，无法修正
		}
		theoretical = d.Location
	case *GARCHDistribution:
		theoretical = 0
	default:
		return
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	shift := theoretical - sum/float64(len(returns))
	for i := range returns {
		returns[i] += shift
	}
}
