package domain

import "time"

const (
	SimulationCompletedEventType          = "risksim.simulation.completed"
	PortfolioSimulationCompletedEventType = "risksim.portfolio.completed"
	StressTestCompletedEventType          = "risksim.stresstest.completed"
	SimulationFailedEventType             = "risksim.simulation.failed"
)

// SimulationCompletedEvent 单资产模拟完成事件
type SimulationCompletedEvent struct {
	RunID        string    `json:"run_id"`
	Symbol       string    `json:"symbol"`
	Distribution string    `json:"distribution"`
	PathCount    int       `json:"path_count"`
	Confidence   float64   `json:"confidence"`
	VaR          string    `json:"var"`
	CVaR         string    `json:"cvar"`
	Timestamp    time.Time `json:"timestamp"`
}

// PortfolioSimulationCompletedEvent 组合模拟完成事件
type PortfolioSimulationCompletedEvent struct {
	RunID        string    `json:"run_id"`
	AssetCount   int       `json:"asset_count"`
	Correlated   bool      `json:"correlated"`
	PathCount    int       `json:"path_count"`
	Confidence   float64   `json:"confidence"`
	PortfolioVaR string    `json:"portfolio_var"`
	Timestamp    time.Time `json:"timestamp"`
}

// StressTestCompletedEvent 压力测试完成事件
type StressTestCompletedEvent struct {
	RunID           string    `json:"run_id"`
	Symbol          string    `json:"symbol"`
	VolatilityShock float64   `json:"volatility_shock"`
	ReturnShock     float64   `json:"return_shock,omitempty"`
	StressedVaR     string    `json:"stressed_var"`
	Timestamp       time.Time `json:"timestamp"`
}

// SimulationFailedEvent 模拟失败事件
type SimulationFailedEvent struct {
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
