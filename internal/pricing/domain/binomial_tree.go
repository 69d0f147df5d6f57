package domain

import (
	"fmt"
	"math"
)

// BinomialTreeInput Cox-Ross-Rubinstein 二叉树定价输入
type BinomialTreeInput struct {
	Spot       float64
	Strike     float64
	Maturity   float64 // 到期时间 (年)
	RiskFree   float64
	Volatility float64
	Steps      int
}

// CalculateBinomialTree 欧式期权的 CRR 二叉树定价，步数增大时收敛到 Black-Scholes
func CalculateBinomialTree(optionType OptionType, in BinomialTreeInput) (float64, error) {
	if in.Spot <= 0 || in.Strike <= 0 || in.Maturity <= 0 || in.Volatility <= 0 || in.Steps <= 0 {
		return 0, fmt.Errorf("binomial tree requires positive spot, strike, maturity, volatility and steps")
	}
	if optionType != OptionTypeCall && optionType != OptionTypePut {
		return 0, fmt.Errorf("unknown option type %q", optionType)
	}

	dt := in.Maturity / float64(in.Steps)
	u := math.Exp(in.Volatility * math.Sqrt(dt))
	d := 1.0 / u
	p := (math.Exp(in.RiskFree*dt) - d) / (u - d)
	discount := math.Exp(-in.RiskFree * dt)

	// 到期节点的内在价值
	values := make([]float64, in.Steps+1)
	for i := 0; i <= in.Steps; i++ {
		price := in.Spot * math.Pow(u, float64(in.Steps-i)) * math.Pow(d, float64(i))
		if optionType == OptionTypeCall {
			values[i] = math.Max(price-in.Strike, 0)
		} else {
			values[i] = math.Max(in.Strike-price, 0)
		}
	}

	// 逆向归纳
	for step := in.Steps - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			values[i] = discount * (p*values[i] + (1-p)*values[i+1])
		}
	}
	return values[0], nil
}
