package domain

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Engine 蒙特卡洛模拟编排器：组装分布、随机源、路径模拟、
// 相关性变换与统计引擎。引擎本身无状态，跨调用不保留任何东西，
// 每次调用独占自己的随机源与分布实例。
type Engine struct{}

// NewEngine 创建模拟编排器
func NewEngine() *Engine {
	return &Engine{}
}

func validateConfig(cfg SimulationConfig) error {
	if cfg.PathCount <= 0 {
		return fmt.Errorf("%w: path count must be positive, got %d", ErrInvalidInput, cfg.PathCount)
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		return fmt.Errorf("%w: confidence level must be in (0,1), got %v", ErrInvalidInput, cfg.ConfidenceLevel)
	}
	return nil
}

// SimulateSingleAsset 单资产模拟：构建分布与随机源，生成路径并计算风险统计量
func (e *Engine) SimulateSingleAsset(cfg SimulationConfig, asset AssetSpec) (*SimulationOutcome, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	dist, err := NewDistribution(cfg.Distribution, cfg.DistributionParams)
	if err != nil {
		return nil, err
	}
	src := NewSource(cfg.Seed)

	returns, prices, err := SimulatePath(asset, cfg, dist, src)
	if err != nil {
		return nil, err
	}
	statistics, err := Summarize(returns, cfg.ConfidenceLevel)
	if err != nil {
		return nil, err
	}
	return &SimulationOutcome{
		Returns:    returns,
		Prices:     prices,
		Statistics: statistics,
		Success:    true,
	}, nil
}

// SimulatePortfolio 组合模拟。
// 权重先归一化再使用；提供相关矩阵时走联合（Cholesky）生成，
// 否则各资产独立并行模拟，每个 worker 持有独立克隆的随机源与新建的分布实例。
func (e *Engine) SimulatePortfolio(cfg SimulationConfig, portfolio PortfolioSpec) (*PortfolioOutcome, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	n := len(portfolio.Assets)
	if n == 0 {
		return nil, fmt.Errorf("%w: portfolio must contain at least one asset", ErrInvalidInput)
	}
	if len(portfolio.Weights) != n {
		return nil, fmt.Errorf("%w: have %d weights for %d assets", ErrInvalidInput, len(portfolio.Weights), n)
	}
	weights, err := normalizeWeights(portfolio.Weights)
	if err != nil {
		return nil, err
	}

	var paths []ReturnPath
	if len(portfolio.CorrelationMatrix) > 0 {
		paths, err = e.correlatedPaths(cfg, portfolio.Assets, portfolio.CorrelationMatrix)
	} else {
		paths, err = e.independentPaths(cfg, portfolio.Assets)
	}
	if err != nil {
		return nil, err
	}

	// 逐资产统计与结果
	assetOutcomes := make([]SimulationOutcome, n)
	for i, asset := range portfolio.Assets {
		statistics, err := Summarize(paths[i], cfg.ConfidenceLevel)
		if err != nil {
			return nil, err
		}
		prices := make([]float64, cfg.PathCount)
		for t, r := range paths[i] {
			prices[t] = asset.InitialPrice * math.Exp(r)
		}
		assetOutcomes[i] = SimulationOutcome{
			Returns:    paths[i],
			Prices:     prices,
			Statistics: statistics,
			Success:    true,
		}
	}

	// 组合层面：收益 = Σ w_i*r_i，价值 = Σ w_i*P0_i*exp(r_i)
	portfolioReturns := make(ReturnPath, cfg.PathCount)
	portfolioValues := make([]float64, cfg.PathCount)
	for t := 0; t < cfg.PathCount; t++ {
		var ret, val float64
		for i := range portfolio.Assets {
			ret += weights[i] * paths[i][t]
			val += weights[i] * portfolio.Assets[i].InitialPrice * math.Exp(paths[i][t])
		}
		portfolioReturns[t] = ret
		portfolioValues[t] = val
	}

	statistics, err := Summarize(portfolioReturns, cfg.ConfidenceLevel)
	if err != nil {
		return nil, err
	}

	// 加性近似：contribution_i = w_i * assetVaR_i，非真实边际贡献
	contributions := make([]float64, n)
	for i := range contributions {
		contributions[i] = weights[i] * assetOutcomes[i].Statistics.VaR
	}

	return &PortfolioOutcome{
		AssetOutcomes:    assetOutcomes,
		PortfolioReturns: portfolioReturns,
		PortfolioValues:  portfolioValues,
		Statistics:       statistics,
		VaRContributions: contributions,
		MarginalVaR:      marginalVaR(portfolio.Assets, weights, paths, portfolioReturns, cfg.ConfidenceLevel),
		Success:          true,
	}, nil
}

// StressTest 压力测试：克隆资产，按 stressFactors[0] 缩放波动率，
// 可选的 stressFactors[1] 缩放预期收益，再委托单资产模拟。
// 波动率冲击因子缺失是确定性的入参违约，不是越界访问。
func (e *Engine) StressTest(cfg SimulationConfig, asset AssetSpec, stressFactors []float64) (*SimulationOutcome, error) {
	if len(stressFactors) == 0 {
		return nil, fmt.Errorf("%w: stress factors must include a volatility shock factor", ErrInvalidInput)
	}
	stressed := asset
	stressed.Volatility *= stressFactors[0]
	if len(stressFactors) > 1 {
		stressed.ExpectedReturn *= stressFactors[1]
	}
	return e.SimulateSingleAsset(cfg, stressed)
}

// independentPaths 各资产独立并行模拟。
// 随机源先全部派生完再启动 worker，保证结果与调度顺序无关。
func (e *Engine) independentPaths(cfg SimulationConfig, assets []AssetSpec) ([]ReturnPath, error) {
	base := NewSource(cfg.Seed)
	sources := make([]*Source, len(assets))
	for i := 1; i < len(assets); i++ {
		sources[i] = base.Clone()
	}
	sources[0] = base

	paths := make([]ReturnPath, len(assets))
	var g errgroup.Group
	for i := range assets {
		g.Go(func() error {
			dist, err := NewDistribution(cfg.Distribution, cfg.DistributionParams)
			if err != nil {
				return err
			}
			returns, _, err := SimulatePath(assets[i], cfg, dist, sources[i])
			if err != nil {
				return err
			}
			paths[i] = returns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// correlatedPaths 联合生成：标定每个资产的分布后，把同一随机源的
// 标准正态向量经 Cholesky 因子变换为相关冲击。
func (e *Engine) correlatedPaths(cfg SimulationConfig, assets []AssetSpec, matrix [][]float64) ([]ReturnPath, error) {
	applier, err := NewCorrelationApplier(matrix, len(assets))
	if err != nil {
		return nil, err
	}
	dists := make([]Distribution, len(assets))
	for i, asset := range assets {
		dist, err := NewDistribution(cfg.Distribution, cfg.DistributionParams)
		if err != nil {
			return nil, err
		}
		if err := calibrateFromAsset(asset, dist); err != nil {
			return nil, err
		}
		dists[i] = dist
	}
	return applier.GeneratePaths(cfg, dists, NewSource(cfg.Seed))
}

// normalizeWeights 把权重归一化为和为 1，权重和为零时无法归一化
func normalizeWeights(weights []float64) ([]float64, error) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if math.Abs(total) < 1e-12 {
		return nil, fmt.Errorf("%w: weights sum to zero and cannot be normalized", ErrInvalidInput)
	}
	normalized := make([]float64, len(weights))
	for i, w := range weights {
		normalized[i] = w / total
	}
	return normalized, nil
}

// marginalVaR 尾部条件损失均值：在组合收益最差的尾部试验上，
// 对各资产的加权收益取均值再取反。
func marginalVaR(assets []AssetSpec, weights []float64, paths []ReturnPath, portfolioReturns ReturnPath, confidenceLevel float64) map[string]float64 {
	nTrials := len(portfolioReturns)
	tail := int(float64(nTrials) * (1 - confidenceLevel))
	if tail < 1 {
		tail = 1
	}

	order := make([]int, nTrials)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return portfolioReturns[order[a]] < portfolioReturns[order[b]]
	})

	out := make(map[string]float64, len(assets))
	for i, asset := range assets {
		var sum float64
		for t := 0; t < tail; t++ {
			sum += weights[i] * paths[i][order[t]]
		}
		out[asset.Symbol] = -sum / float64(tail)
	}
	return out
}
