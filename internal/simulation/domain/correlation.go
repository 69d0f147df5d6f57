package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CorrelationApplier 通过相关矩阵的 Cholesky 因子 L (L*L^T = R)
// 把各资产独立的标准正态冲击变换为联合相关冲击。
// 变换作用在冲击上而不是已实现的收益上：每个试验抽取一组独立标准正态向量，
// 左乘 L 后逐资产喂给冲击驱动的分布。
type CorrelationApplier struct {
	factor [][]float64 // 下三角
	dim    int
}

// NewCorrelationApplier 校验并分解相关矩阵。
// 非方阵、维度与资产数不符、不对称、对角线非 1、|rho|>1 属于入参非法；
// 分解失败（非正定）属于数值退化。
func NewCorrelationApplier(matrix [][]float64, assetCount int) (*CorrelationApplier, error) {
	if err := ValidateCorrelationMatrix(matrix, assetCount); err != nil {
		return nil, err
	}
	factor, err := choleskyFactor(matrix)
	if err != nil {
		return nil, err
	}
	return &CorrelationApplier{factor: factor, dim: len(matrix)}, nil
}

// ValidateCorrelationMatrix 校验相关矩阵的结构性质（不含正定性）
func ValidateCorrelationMatrix(matrix [][]float64, assetCount int) error {
	n := len(matrix)
	if n == 0 {
		return fmt.Errorf("%w: correlation matrix is empty", ErrInvalidInput)
	}
	if n != assetCount {
		return fmt.Errorf("%w: correlation matrix dimension %d does not match asset count %d",
			ErrInvalidInput, n, assetCount)
	}
	for i, row := range matrix {
		if len(row) != n {
			return fmt.Errorf("%w: correlation matrix is not square: row %d has %d columns, want %d",
				ErrInvalidInput, i, len(row), n)
		}
	}
	const tol = 1e-9
	for i := 0; i < n; i++ {
		if math.Abs(matrix[i][i]-1) > tol {
			return fmt.Errorf("%w: correlation matrix diagonal must be 1, got %v at (%d,%d)",
				ErrInvalidInput, matrix[i][i], i, i)
		}
		for j := 0; j < n; j++ {
			v := matrix[i][j]
			if math.IsNaN(v) || math.Abs(v) > 1+tol {
				return fmt.Errorf("%w: correlation out of range [-1,1]: %v at (%d,%d)",
					ErrInvalidInput, v, i, j)
			}
			if math.Abs(v-matrix[j][i]) > tol {
				return fmt.Errorf("%w: correlation matrix is not symmetric at (%d,%d)",
					ErrInvalidInput, i, j)
			}
		}
	}
	return nil
}

// choleskyFactor 计算下三角因子。负主元（非正定）在这里被拒绝。
func choleskyFactor(matrix [][]float64) ([][]float64, error) {
	n := len(matrix)
	data := make([]float64, 0, n*n)
	for _, row := range matrix {
		data = append(data, row...)
	}
	sym := mat.NewSymDense(n, data)

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("%w: correlation matrix is not positive definite", ErrNumericDegeneracy)
	}

	var lower mat.TriDense
	chol.LTo(&lower)

	factor := make([][]float64, n)
	for i := 0; i < n; i++ {
		factor[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			factor[i][j] = lower.At(i, j)
		}
	}
	return factor, nil
}

// GeneratePaths 生成各资产的联合相关收益路径。
// 分布必须已按资产标定；所有资产的冲击出自同一个随机源，保证跨资产的
// 联合抽样顺序是确定性的。
func (a *CorrelationApplier) GeneratePaths(cfg SimulationConfig, dists []Distribution, src *Source) ([]ReturnPath, error) {
	if len(dists) != a.dim {
		return nil, fmt.Errorf("%w: have %d distributions for %d correlated assets",
			ErrInvalidInput, len(dists), a.dim)
	}
	if cfg.PathCount <= 0 {
		return nil, fmt.Errorf("%w: path count must be positive, got %d", ErrInvalidInput, cfg.PathCount)
	}

	paths := make([]ReturnPath, a.dim)
	for i := range paths {
		paths[i] = make(ReturnPath, cfg.PathCount)
		dists[i].Reset()
	}

	z := make([]float64, a.dim)
	x := make([]float64, a.dim)
	for trial := 0; trial < cfg.PathCount; trial++ {
		for i := range z {
			z[i] = standardNormal(src)
		}
		// x = L * z
		for i := 0; i < a.dim; i++ {
			var sum float64
			for j := 0; j <= i; j++ {
				sum += a.factor[i][j] * z[j]
			}
			x[i] = sum
		}
		for i := range dists {
			paths[i][trial] = dists[i].SampleShock(x[i])
		}
	}
	return paths, nil
}

// Factor 返回下三角 Cholesky 因子的拷贝
func (a *CorrelationApplier) Factor() [][]float64 {
	out := make([][]float64, len(a.factor))
	for i, row := range a.factor {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
