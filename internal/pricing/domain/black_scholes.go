package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// BlackScholesInput Black-Scholes 模型输入
type BlackScholesInput struct {
	Spot       float64 // 标的资产价格
	Strike     float64 // 执行价格
	Maturity   float64 // 到期时间 (年)
	RiskFree   float64 // 无风险利率
	Volatility float64 // 波动率
}

// BlackScholesResult Black-Scholes 模型输出
type BlackScholesResult struct {
	Price decimal.Decimal
	Delta decimal.Decimal
	Gamma decimal.Decimal
	Theta decimal.Decimal
	Vega  decimal.Decimal
	Rho   decimal.Decimal
}

func (in BlackScholesInput) validate() error {
	if in.Spot <= 0 || in.Strike <= 0 || in.Maturity <= 0 || in.Volatility <= 0 {
		return fmt.Errorf("black-scholes requires positive spot, strike, maturity and volatility")
	}
	return nil
}

// CalculateBlackScholes 计算 Black-Scholes 价格和 Greeks
func CalculateBlackScholes(optionType OptionType, in BlackScholesInput) (*BlackScholesResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	sqrtT := math.Sqrt(in.Maturity)
	d1 := (math.Log(in.Spot/in.Strike) + (in.RiskFree+0.5*in.Volatility*in.Volatility)*in.Maturity) / (in.Volatility * sqrtT)
	d2 := d1 - in.Volatility*sqrtT

	discount := math.Exp(-in.RiskFree * in.Maturity)
	gamma := normPdf(d1) / (in.Spot * in.Volatility * sqrtT)
	vega := in.Spot * sqrtT * normPdf(d1)

	var price, delta, theta, rho float64
	switch optionType {
	case OptionTypeCall:
		price = in.Spot*normCdf(d1) - in.Strike*discount*normCdf(d2)
		delta = normCdf(d1)
		theta = -in.Spot*normPdf(d1)*in.Volatility/(2*sqrtT) - in.RiskFree*in.Strike*discount*normCdf(d2)
		rho = in.Strike * in.Maturity * discount * normCdf(d2)
	case OptionTypePut:
		price = in.Strike*discount*normCdf(-d2) - in.Spot*normCdf(-d1)
		delta = normCdf(d1) - 1
		theta = -in.Spot*normPdf(d1)*in.Volatility/(2*sqrtT) + in.RiskFree*in.Strike*discount*normCdf(-d2)
		rho = -in.Strike * in.Maturity * discount * normCdf(-d2)
	default:
		return nil, fmt.Errorf("unknown option type %q", optionType)
	}

	return &BlackScholesResult{
		Price: decimal.NewFromFloat(price),
		Delta: decimal.NewFromFloat(delta),
		Gamma: decimal.NewFromFloat(gamma),
		Theta: decimal.NewFromFloat(theta),
		Vega:  decimal.NewFromFloat(vega),
		Rho:   decimal.NewFromFloat(rho),
	}, nil
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
