package domain

import "errors"

// 错误分类：入参非法、数值退化、内部故障。
// 所有错误在应用层边界统一转换为 success=false 的结果，不向外传播。
var (
	// ErrInvalidInput 入参非法（空数组、维度不匹配、置信度越界等）
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumericDegeneracy 数值退化（样本过小、alpha+beta>=1、矩阵非正定等）
	ErrNumericDegeneracy = errors.New("numeric degeneracy")

	// ErrInternalFailure 计算过程中的未预期故障
	ErrInternalFailure = errors.New("internal failure")
)
