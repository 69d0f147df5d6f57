package domain

import "context"

// SimulationRunRepository 模拟运行记录仓储（写模型）
type SimulationRunRepository interface {
	Save(ctx context.Context, run *SimulationRun) error
	GetByRunID(ctx context.Context, runID string) (*SimulationRun, error)
	List(ctx context.Context, limit int) ([]*SimulationRun, error)
}

// SimulationRunReadRepository 模拟运行读模型（Redis 缓存），由投影消费者刷新
type SimulationRunReadRepository interface {
	SaveRun(ctx context.Context, run *SimulationRun) error
	GetRun(ctx context.Context, runID string) (*SimulationRun, error)
	DeleteRun(ctx context.Context, runID string) error
}
