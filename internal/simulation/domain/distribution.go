package domain

import (
	"fmt"
	"math"
)

// Distribution 收益分布。Sample 消耗随机源产生一个收益样本；
// SampleShock 接收外部给定的标准正态冲击（用于相关性注入）。
// GARCH 携带路径内的递归状态，独立路径间必须使用 Clone 或 Reset 后的新实例。
type Distribution interface {
	Sample(src *Source) float64
	SampleShock(z float64) float64
	// Calibrate 用历史样本估计出的均值与标准差重设位置/尺度参数
	Calibrate(mean, stdDev float64)
	// UpdateParameters 整体替换分布参数，仅允许在独立运行之间调用
	UpdateParameters(params []float64) error
	// Reset 清除路径内的可变状态，为新路径做准备
	Reset()
	Clone() Distribution
	Kind() DistributionKind
}

// NewDistribution 按类型与参数构造分布，参数缺省沿用各分布的默认值。
//
//	NORMAL:    [mean, stdDev]                默认 [0, 1]
//	STUDENT_T: [df, location, scale]         默认 [5, 0, 1]
//	GARCH:     [omega, alpha, beta]          默认 [0.0001, 0.1, 0.85]
func NewDistribution(kind DistributionKind, params []float64) (Distribution, error) {
	switch kind {
	case DistributionNormal, "":
		d := &NormalDistribution{Mean: 0, StdDev: 1}
		if len(params) > 0 {
			if err := d.UpdateParameters(params); err != nil {
				return nil, err
			}
		}
		return d, nil
	case DistributionStudentT:
		d := &StudentTDistribution{DegreesOfFreedom: 5, Location: 0, Scale: 1}
		if len(params) > 0 {
			if err := d.UpdateParameters(params); err != nil {
				return nil, err
			}
		}
		return d, nil
	case DistributionGARCH:
		if len(params) == 0 {
			params = []float64{0.0001, 0.1, 0.85}
		}
		return NewGARCHDistribution(params...)
	default:
		return nil, fmt.Errorf("%w: unknown distribution kind %q", ErrInvalidInput, kind)
	}
}

// standardNormal 通过 Box-Muller 变换从两个独立均匀随机数产生标准正态随机数。
// 第一个均匀数被钳制到 1e-10 以上，避免对数奇点。
func standardNormal(src *Source) float64 {
	u1 := src.Generate()
	u2 := src.Generate()
	if u1 < 1e-10 {
		u1 = 1e-10
	}
	return math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2.0*math.Pi*u2)
}

// NormalDistribution 正态分布 N(mean, stdDev^2)
type NormalDistribution struct {
	Mean   float64
	StdDev float64
}

func (d *NormalDistribution) Sample(src *Source) float64 {
	return d.Mean + d.StdDev*standardNormal(src)
}

func (d *NormalDistribution) SampleShock(z float64) float64 {
	return d.Mean + d.StdDev*z
}

func (d *NormalDistribution) Calibrate(mean, stdDev float64) {
	d.Mean = mean
	d.StdDev = stdDev
}

func (d *NormalDistribution) UpdateParameters(params []float64) error {
	if len(params) < 2 {
		return fmt.Errorf("%w: normal distribution requires [mean, stdDev]", ErrInvalidInput)
	}
	if params[1] < 0 {
		return fmt.Errorf("%w: stdDev must be non-negative, got %v", ErrInvalidInput, params[1])
	}
	d.Mean = params[0]
	d.StdDev = params[1]
	return nil
}

func (d *NormalDistribution) Reset() {}

func (d *NormalDistribution) Clone() Distribution {
	c := *d
	return &c
}

func (d *NormalDistribution) Kind() DistributionKind { return DistributionNormal }

// StudentTDistribution 学生 t 分布：location + scale * Z / sqrt(ChiSq/df)。
// ChiSq 由 df 个独立标准正态平方和构造，因此 df 必须是正整数。
type StudentTDistribution struct {
	DegreesOfFreedom int
	Location         float64
	Scale            float64
}

func (d *StudentTDistribution) Sample(src *Source) float64 {
	z := standardNormal(src)
	chi2 := 0.0
	for i := 0; i < d.DegreesOfFreedom; i++ {
		n := standardNormal(src)
		chi2 += n * n
	}
	t := z / math.Sqrt(chi2/float64(d.DegreesOfFreedom))
	return d.Location + d.Scale*t
}

// SampleShock 线性注入：相关冲击只保留一阶（高斯）依赖结构
func (d *StudentTDistribution) SampleShock(z float64) float64 {
	return d.Location + d.Scale*z
}

func (d *StudentTDistribution) Calibrate(mean, stdDev float64) {
	d.Location = mean
	d.Scale = stdDev
}

func (d *StudentTDistribution) UpdateParameters(params []float64) error {
	if len(params) < 3 {
		return fmt.Errorf("%w: student-t distribution requires [df, location, scale]", ErrInvalidInput)
	}
	df, err := integralDegreesOfFreedom(params[0])
	if err != nil {
		return err
	}
	if params[2] < 0 {
		return fmt.Errorf("%w: scale must be non-negative, got %v", ErrInvalidInput, params[2])
	}
	d.DegreesOfFreedom = df
	d.Location = params[1]
	d.Scale = params[2]
	return nil
}

func (d *StudentTDistribution) Reset() {}

func (d *StudentTDistribution) Clone() Distribution {
	c := *d
	return &c
}

func (d *StudentTDistribution) Kind() DistributionKind { return DistributionStudentT }

// integralDegreesOfFreedom 校验自由度为正整数。
// 分数自由度无法用平方和构造卡方变量，直接拒绝而不是截断。
func integralDegreesOfFreedom(df float64) (int, error) {
	if df < 1 {
		return 0, fmt.Errorf("%w: degrees of freedom must be >= 1, got %v", ErrInvalidInput, df)
	}
	rounded := math.Round(df)
	if math.Abs(df-rounded) > 1e-9 {
		return 0, fmt.Errorf("%w: degrees of freedom must be an integer, got %v", ErrInvalidInput, df)
	}
	return int(rounded), nil
}

// GARCHDistribution GARCH(1,1)：方差递归 v' = omega + alpha*r^2 + beta*v。
// 串行依赖产生波动率聚集，是该模型的定义性行为。
type GARCHDistribution struct {
	Omega float64
	Alpha float64
	Beta  float64

	currentVariance float64
	drawn           bool // 自上次 Reset 以来是否已采样
}

// NewGARCHDistribution 构造 GARCH(1,1)，初始方差取无条件方差 omega/(1-alpha-beta)。
func NewGARCHDistribution(params ...float64) (*GARCHDistribution, error) {
	d := &GARCHDistribution{}
	if err := d.UpdateParameters(params); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *GARCHDistribution) Sample(src *Source) float64 {
	return d.SampleShock(standardNormal(src))
}

func (d *GARCHDistribution) SampleShock(z float64) float64 {
	r := math.Sqrt(d.currentVariance) * z
	d.currentVariance = d.Omega + d.Alpha*r*r + d.Beta*d.currentVariance
	d.drawn = true
	return r
}

// Calibrate 对 GARCH 是空操作：方差由递归决定，不接受外部均值/标准差
func (d *GARCHDistribution) Calibrate(mean, stdDev float64) {}

// UpdateParameters 替换 omega/alpha/beta 并重置为新的无条件方差。
// 路径中途调用是未定义行为，已采样且未 Reset 时拒绝。
func (d *GARCHDistribution) UpdateParameters(params []float64) error {
	if d.drawn {
		return fmt.Errorf("%w: GARCH parameters cannot change mid-path, reset first", ErrInvalidInput)
	}
	if len(params) < 3 {
		return fmt.Errorf("%w: GARCH distribution requires [omega, alpha, beta]", ErrInvalidInput)
	}
	omega, alpha, beta := params[0], params[1], params[2]
	if omega <= 0 || alpha < 0 || beta < 0 {
		return fmt.Errorf("%w: GARCH requires omega > 0, alpha >= 0, beta >= 0", ErrInvalidInput)
	}
	if alpha+beta >= 1 {
		return fmt.Errorf("%w: GARCH requires alpha + beta < 1, got %v", ErrNumericDegeneracy, alpha+beta)
	}
	d.Omega = omega
	d.Alpha = alpha
	d.Beta = beta
	d.currentVariance = omega / (1 - alpha - beta)
	return nil
}

// Reset 将方差拉回无条件方差，供新的独立路径使用
func (d *GARCHDistribution) Reset() {
	d.currentVariance = d.Omega / (1 - d.Alpha - d.Beta)
	d.drawn = false
}

// CurrentVariance 返回下一次采样将使用的条件方差
func (d *GARCHDistribution) CurrentVariance() float64 {
	return d.currentVariance
}

func (d *GARCHDistribution) Clone() Distribution {
	c := &GARCHDistribution{Omega: d.Omega, Alpha: d.Alpha, Beta: d.Beta}
	c.Reset()
	return c
}

func (d *GARCHDistribution) Kind() DistributionKind { return DistributionGARCH }
