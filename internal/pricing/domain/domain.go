// Package domain 期权定价领域模型：封闭式与格点定价，
// 供模拟引擎交叉验证模拟出的期权价格。
package domain

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)
