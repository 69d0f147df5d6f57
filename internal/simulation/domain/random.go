package domain

import (
	"encoding/binary"
	"math/rand/v2"
	"time"

	crypto_rand "crypto/rand"
)

// Source 可复现的均匀随机数流，基于 PCG。
// 同一种子产生同一序列；Clone 产生与原流不相关的独立流，可供并行路径使用。
type Source struct {
	rng  *rand.Rand
	seed uint64
}

// NewSource 创建随机源。种子为 0 时从外部熵源取种。
func NewSource(seed uint64) *Source {
	s := &Source{}
	s.SetSeed(seed)
	return s
}

// Generate 返回 [0,1) 内的均匀随机数
func (s *Source) Generate() float64 {
	return s.rng.Float64()
}

// SetSeed 确定性重置内部状态。种子为 0 时改用外部熵源。
func (s *Source) SetSeed(seed uint64) {
	if seed == 0 {
		seed = entropySeed()
	}
	s.seed = seed
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Clone 派生独立随机流：用母流的后续输出取种，互不共享可变状态。
func (s *Source) Clone() *Source {
	derived := s.rng.Uint64()
	if derived == 0 {
		derived = 1
	}
	return NewSource(derived)
}

// Seed 返回当前生效的种子（种子 0 时为实际取到的熵值）
func (s *Source) Seed() uint64 {
	return s.seed
}

// entropySeed 从 crypto/rand 取种，读取失败时退回时间戳
func entropySeed() uint64 {
	var b [8]byte
	if _, err := crypto_rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	v := binary.LittleEndian.Uint64(b[:])
	if v == 0 {
		v = uint64(time.Now().UnixNano())
	}
	return v
}
