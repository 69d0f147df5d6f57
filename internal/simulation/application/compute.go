package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/financialrisk/internal/pricing/domain"
	simdomain "github.com/wyfcoding/financialrisk/internal/simulation/domain"
	"github.com/wyfcoding/pkg/logging"
)

// ComputeService 无状态计算入口：不落库不发事件，失败时返回 -1 哨兵值，
// 错误细节随本次调用返回，互不共享。
type ComputeService struct {
	engine *simdomain.Engine
}

// NewComputeService 创建计算服务实例
func NewComputeService(engine *simdomain.Engine) *ComputeService {
	return &ComputeService{engine: engine}
}

// ComputeSingleAssetVaR 按历史收益序列计算单资产 VaR
func (s *ComputeService) ComputeSingleAssetVaR(ctx context.Context, returns []float64, confidence float64, pathCount int, distribution string, params []float64) (float64, error) {
	cfg := simdomain.SimulationConfig{
		PathCount:          pathCount,
		ConfidenceLevel:    confidence,
		Distribution:       parseKind(distribution),
		DistributionParams: params,
	}
	asset := simdomain.AssetSpec{Symbol: "ADHOC", InitialPrice: 1, HistoricalReturns: returns}
	outcome, err := s.engine.SimulateSingleAsset(cfg, asset)
	if err != nil {
		logging.Warn(ctx, "single asset VaR computation failed", "error", err)
		return -1, err
	}
	return outcome.Statistics.VaR, nil
}

// ComputePortfolioVaR 按各资产历史收益与权重计算组合 VaR
func (s *ComputeService) ComputePortfolioVaR(ctx context.Context, returns [][]float64, weights []float64, correlation [][]float64, confidence float64, pathCount int) (float64, error) {
	cfg := simdomain.SimulationConfig{
		PathCount:       pathCount,
		ConfidenceLevel: confidence,
		Distribution:    simdomain.DistributionNormal,
	}
	spec := simdomain.PortfolioSpec{
		Assets:            make([]simdomain.AssetSpec, len(returns)),
		Weights:           weights,
		CorrelationMatrix: correlation,
	}
	for i, r := range returns {
		spec.Assets[i] = simdomain.AssetSpec{Symbol: "ADHOC", InitialPrice: 1, HistoricalReturns: r}
	}
	outcome, err := s.engine.SimulatePortfolio(cfg, spec)
	if err != nil {
		logging.Warn(ctx, "portfolio VaR computation failed", "error", err)
		return -1, err
	}
	return outcome.Statistics.VaR, nil
}

// ComputeVaRFromSample 直接对给定样本计算 VaR，不经过模拟
func (s *ComputeService) ComputeVaRFromSample(ctx context.Context, sample []float64, confidence float64) (float64, error) {
	v, err := simdomain.ValueAtRisk(sample, confidence)
	if err != nil {
		logging.Warn(ctx, "VaR computation failed", "error", err)
		return -1, err
	}
	return v, nil
}

// ComputeCVaRFromSample 直接对给定样本计算 CVaR
func (s *ComputeService) ComputeCVaRFromSample(ctx context.Context, sample []float64, confidence float64) (float64, error) {
	v, err := simdomain.ConditionalValueAtRisk(sample, confidence)
	if err != nil {
		logging.Warn(ctx, "CVaR computation failed", "error", err)
		return -1, err
	}
	return v, nil
}

// OptionCrossCheckDTO 期权定价交叉验证结果
type OptionCrossCheckDTO struct {
	AnalyticPrice  string  `json:"analytic_price"`
	SimulatedPrice string  `json:"simulated_price"`
	AbsoluteError  float64 `json:"absolute_error"`
	RelativeError  float64 `json:"relative_error"`
	PathCount      int     `json:"path_count"`
	Success        bool    `json:"success"`
	ErrorMessage   string  `json:"error_message,omitempty"`
}

// CrossValidateOptionCommand 用蒙特卡洛模拟交叉验证 Black-Scholes 解析价
func (s *ComputeService) CrossValidateOptionCommand(ctx context.Context, cmd RunSingleAssetCommand, optionType string, strike, riskFree, maturity float64) *OptionCrossCheckDTO {
	cfg, asset := toDomainConfig(cmd), toDomainAsset(cmd)
	check, err := s.engine.CrossValidateOptionPrice(cfg, asset, domain.OptionType(optionType), strike, riskFree, maturity)
	if err != nil {
		logging.Warn(ctx, "option cross validation failed", "error", err)
		return &OptionCrossCheckDTO{Success: false, ErrorMessage: err.Error()}
	}
	return &OptionCrossCheckDTO{
		AnalyticPrice:  decimal.NewFromFloat(check.AnalyticPrice).String(),
		SimulatedPrice: decimal.NewFromFloat(check.MonteCarloPrice).String(),
		AbsoluteError:  check.AbsoluteError,
		RelativeError:  check.RelativeError,
		PathCount:      cfg.PathCount,
		Success:        true,
	}
}
