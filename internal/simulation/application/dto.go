// Package application 模拟引擎的应用服务层：命令/查询服务、DTO 与错误边界
package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
)

// RunSingleAssetCommand 单资产模拟命令
type RunSingleAssetCommand struct {
	Symbol             string    `json:"symbol"`
	InitialPrice       float64   `json:"initial_price"`
	ExpectedReturn     float64   `json:"expected_return"`
	Volatility         float64   `json:"volatility"`
	HistoricalReturns  []float64 `json:"historical_returns,omitempty"`
	PathCount          int       `json:"path_count"`
	ConfidenceLevel    float64   `json:"confidence_level"`
	Seed               uint64    `json:"seed"`
	Distribution       string    `json:"distribution"`
	DistributionParams []float64 `json:"distribution_params,omitempty"`
	Antithetic         bool      `json:"antithetic"`
	ControlVariate     bool      `json:"control_variate"`
}

// PortfolioAssetDTO 组合资产参数
type PortfolioAssetDTO struct {
	Symbol            string    `json:"symbol"`
	InitialPrice      float64   `json:"initial_price"`
	ExpectedReturn    float64   `json:"expected_return"`
	Volatility        float64   `json:"volatility"`
	HistoricalReturns []float64 `json:"historical_returns,omitempty"`
}

// RunPortfolioCommand 组合模拟命令
type RunPortfolioCommand struct {
	Assets             []PortfolioAssetDTO `json:"assets"`
	Weights            []float64           `json:"weights"`
	CorrelationMatrix  [][]float64         `json:"correlation_matrix,omitempty"`
	PathCount          int                 `json:"path_count"`
	ConfidenceLevel    float64             `json:"confidence_level"`
	Seed               uint64              `json:"seed"`
	Distribution       string              `json:"distribution"`
	DistributionParams []float64           `json:"distribution_params,omitempty"`
}

// RunStressTestCommand 压力测试命令
type RunStressTestCommand struct {
	RunSingleAssetCommand
	StressFactors []float64 `json:"stress_factors"`
}

// RiskStatisticsDTO 风险统计量
type RiskStatisticsDTO struct {
	Mean           float64             `json:"mean"`
	StdDev         float64             `json:"std_dev"`
	Skewness       float64             `json:"skewness"`
	ExcessKurtosis float64             `json:"excess_kurtosis"`
	Percentiles    map[float64]float64 `json:"percentiles"`
	VaR            string              `json:"var"`
	CVaR           string              `json:"cvar"`
}

// SimulationResultDTO 单资产/压力测试模拟结果
type SimulationResultDTO struct {
	RunID        string            `json:"run_id"`
	Symbol       string            `json:"symbol"`
	Distribution string            `json:"distribution"`
	PathCount    int               `json:"path_count"`
	Confidence   float64           `json:"confidence"`
	Statistics   RiskStatisticsDTO `json:"statistics"`
	Success      bool              `json:"success"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// PortfolioResultDTO 组合模拟结果
type PortfolioResultDTO struct {
	RunID               string             `json:"run_id"`
	AssetCount          int                `json:"asset_count"`
	Correlated          bool               `json:"correlated"`
	PathCount           int                `json:"path_count"`
	Confidence          float64            `json:"confidence"`
	PortfolioVaR        string             `json:"portfolio_var"`
	PortfolioCVaR       string             `json:"portfolio_cvar"`
	ExpectedReturn      float64            `json:"expected_return"`
	PortfolioVolatility float64            `json:"portfolio_volatility"`
	VaRContributions    map[string]string  `json:"var_contributions"`
	MarginalVaR         map[string]float64 `json:"marginal_var"`
	Success             bool               `json:"success"`
	ErrorMessage        string             `json:"error_message,omitempty"`
}

// SimulationRunDTO 模拟运行记录
type SimulationRunDTO struct {
	RunID           string    `json:"run_id"`
	Kind            string    `json:"kind"`
	Symbol          string    `json:"symbol"`
	Distribution    string    `json:"distribution"`
	PathCount       int       `json:"path_count"`
	ConfidenceLevel float64   `json:"confidence_level"`
	VaR             string    `json:"var"`
	CVaR            string    `json:"cvar"`
	Mean            float64   `json:"mean"`
	StdDev          float64   `json:"std_dev"`
	Success         bool      `json:"success"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toStatisticsDTO(s domain.RiskStatistics) RiskStatisticsDTO {
	return RiskStatisticsDTO{
		Mean:           s.Mean,
		StdDev:         s.StdDev,
		Skewness:       s.Skewness,
		ExcessKurtosis: s.ExcessKurtosis,
		Percentiles:    s.Percentiles,
		VaR:            decimal.NewFromFloat(s.VaR).String(),
		CVaR:           decimal.NewFromFloat(s.CVaR).String(),
	}
}

func toRunDTO(run *domain.SimulationRun) *SimulationRunDTO {
	if run == nil {
		return nil
	}
	return &SimulationRunDTO{
		RunID:           run.RunID,
		Kind:            string(run.Kind),
		Symbol:          run.Symbol,
		Distribution:    run.Distribution,
		PathCount:       run.PathCount,
		ConfidenceLevel: run.ConfidenceLevel,
		VaR:             decimal.NewFromFloat(run.VaR).String(),
		CVaR:            decimal.NewFromFloat(run.CVaR).String(),
		Mean:            run.Mean,
		StdDev:          run.StdDev,
		Success:         run.Success,
		ErrorMessage:    run.ErrorMessage,
		CreatedAt:       run.CreatedAt,
	}
}
