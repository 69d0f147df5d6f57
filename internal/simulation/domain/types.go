// Package domain 包含蒙特卡洛风险模拟引擎的领域模型
package domain

import (
	"time"
)

// DistributionKind 收益分布类型
type DistributionKind string

const (
	DistributionNormal   DistributionKind = "NORMAL"
	DistributionStudentT DistributionKind = "STUDENT_T"
	DistributionGARCH    DistributionKind = "GARCH"
)

// SimulationConfig 单次模拟运行的配置，调用方持有，引擎只读
type SimulationConfig struct {
	PathCount          int              `json:"path_count"`          // 模拟次数 (例如 10000)
	ConfidenceLevel    float64          `json:"confidence_level"`    // 置信度, e.g., 0.95, 0.99
	Seed               uint64           `json:"seed"`                // 0 表示使用外部熵源
	Distribution       DistributionKind `json:"distribution"`        // 分布类型
	DistributionParams []float64        `json:"distribution_params"` // 分布参数, 按类型解释
	Antithetic         bool             `json:"antithetic"`          // 对偶变量法
	ControlVariate     bool             `json:"control_variate"`     // 均值控制变量法
}

// AssetSpec 单项资产参数
type AssetSpec struct {
	Symbol            string    `json:"symbol"`
	InitialPrice      float64   `json:"initial_price"`
	ExpectedReturn    float64   `json:"expected_return"` // 预期收益率 (mu)
	Volatility        float64   `json:"volatility"`      // 波动率 (sigma)
	HistoricalReturns []float64 `json:"historical_returns,omitempty"`
}

// PortfolioSpec 组合参数：资产顺序与权重一一对应
type PortfolioSpec struct {
	Assets            []AssetSpec `json:"assets"`
	Weights           []float64   `json:"weights"`
	CorrelationMatrix [][]float64 `json:"correlation_matrix,omitempty"`
}

// ReturnPath 一次配置下全部试验的模拟收益序列（非时间序列）
type ReturnPath []float64

// RiskStatistics 样本风险统计量
type RiskStatistics struct {
	Mean           float64             `json:"mean"`
	StdDev         float64             `json:"std_dev"`
	Skewness       float64             `json:"skewness"`
	ExcessKurtosis float64             `json:"excess_kurtosis"`
	Percentiles    map[float64]float64 `json:"percentiles"` // 概率 -> 分位值
	VaR            float64             `json:"var"`         // 正数损失
	CVaR           float64             `json:"cvar"`        // 正数损失
}

// SimulationOutcome 单资产模拟结果
type SimulationOutcome struct {
	Returns      ReturnPath     `json:"returns"`
	Prices       []float64      `json:"prices"`
	Statistics   RiskStatistics `json:"statistics"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// PortfolioOutcome 组合模拟结果
type PortfolioOutcome struct {
	AssetOutcomes    []SimulationOutcome `json:"asset_outcomes"`
	PortfolioReturns ReturnPath          `json:"portfolio_returns"`
	PortfolioValues  []float64           `json:"portfolio_values"`
	Statistics       RiskStatistics      `json:"statistics"`
	VaRContributions []float64           `json:"var_contributions"` // w_i * assetVaR_i 的加性近似
	MarginalVaR      map[string]float64  `json:"marginal_var"`      // 尾部条件损失均值
	Success          bool                `json:"success"`
	ErrorMessage     string              `json:"error_message,omitempty"`
}

// RunKind 模拟运行类型
type RunKind string

const (
	RunKindSingleAsset RunKind = "SINGLE_ASSET"
	RunKindPortfolio   RunKind = "PORTFOLIO"
	RunKindStressTest  RunKind = "STRESS_TEST"
)

// SimulationRun 一次模拟运行的持久化记录（写模型）
type SimulationRun struct {
	ID              uint      `json:"id"`
	RunID           string    `json:"run_id"`
	Kind            RunKind   `json:"kind"`
	Symbol          string    `json:"symbol"`
	Distribution    string    `json:"distribution"`
	PathCount       int       `json:"path_count"`
	ConfidenceLevel float64   `json:"confidence_level"`
	Seed            uint64    `json:"seed"`
	VaR             float64   `json:"var"`
	CVaR            float64   `json:"cvar"`
	Mean            float64   `json:"mean"`
	StdDev          float64   `json:"std_dev"`
	Skewness        float64   `json:"skewness"`
	ExcessKurtosis  float64   `json:"excess_kurtosis"`
	Success         bool      `json:"success"`
	ErrorMessage    string    `json:"error_message"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
