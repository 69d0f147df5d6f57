package domain

import (
	"fmt"
	"math"

	pricing "github.com/wyfcoding/financialrisk/internal/pricing/domain"
)

// OptionCrossCheck 模拟期权价格与封闭式定价的交叉验证结果
type OptionCrossCheck struct {
	MonteCarloPrice float64 `json:"monte_carlo_price"`
	AnalyticPrice   float64 `json:"analytic_price"`
	AbsoluteError   float64 `json:"absolute_error"`
	RelativeError   float64 `json:"relative_error"`
}

// CrossValidateOptionPrice 用风险中性正态收益模拟欧式期权价格，
// 并与 Black-Scholes 封闭式结果对比。仅用于校验模拟器的数值质量，
// 不属于风险统计的核心路径。
func (e *Engine) CrossValidateOptionPrice(cfg SimulationConfig, asset AssetSpec, optionType pricing.OptionType, strike, riskFree, maturity float64) (*OptionCrossCheck, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if asset.InitialPrice <= 0 || strike <= 0 || maturity <= 0 || asset.Volatility <= 0 {
		return nil, fmt.Errorf("%w: option cross-check requires positive price, strike, maturity and volatility", ErrInvalidInput)
	}

	analytic, err := pricing.CalculateBlackScholes(optionType, pricing.BlackScholesInput{
		Spot:       asset.InitialPrice,
		Strike:     strike,
		Maturity:   maturity,
		RiskFree:   riskFree,
		Volatility: asset.Volatility,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 风险中性测度下的对数收益：N((r - σ²/2)T, σ²T)
	sigma := asset.Volatility * math.Sqrt(maturity)
	drift := (riskFree - 0.5*asset.Volatility*asset.Volatility) * maturity
	dist := &NormalDistribution{Mean: drift, StdDev: sigma}
	src := NewSource(cfg.Seed)

	discount := math.Exp(-riskFree * maturity)
	var sum float64
	for i := 0; i < cfg.PathCount; i++ {
		terminal := asset.InitialPrice * math.Exp(dist.Sample(src))
		var payoff float64
		if optionType == pricing.OptionTypeCall {
			payoff = math.Max(terminal-strike, 0)
		} else {
			payoff = math.Max(strike-terminal, 0)
		}
		sum += payoff
	}
	mcPrice := discount * sum / float64(cfg.PathCount)

	analyticPrice := analytic.Price.InexactFloat64()
	absErr := math.Abs(mcPrice - analyticPrice)
	relErr := 0.0
	if analyticPrice != 0 {
		relErr = absErr / math.Abs(analyticPrice)
	}
	return &OptionCrossCheck{
		MonteCarloPrice: mcPrice,
		AnalyticPrice:   analyticPrice,
		AbsoluteError:   absErr,
		RelativeError:   relErr,
	}, nil
}
