package application

import (
	"context"

	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
	"github.com/wyfcoding/pkg/logging"
)

// SimulationProjectionService 读模型投影服务：消费模拟事件后从写模型回源刷新 Redis
type SimulationProjectionService struct {
	repo     domain.SimulationRunRepository
	readRepo domain.SimulationRunReadRepository
}

// NewSimulationProjectionService 创建投影服务实例
func NewSimulationProjectionService(repo domain.SimulationRunRepository, readRepo domain.SimulationRunReadRepository) *SimulationProjectionService {
	return &SimulationProjectionService{repo: repo, readRepo: readRepo}
}

// RefreshRun 由事件触发，按运行 ID 刷新读模型
func (s *SimulationProjectionService) RefreshRun(ctx context.Context, runID string) error {
	run, err := s.repo.GetByRunID(ctx, runID)
	if err != nil {
		logging.Error(ctx, "failed to load run for projection", "error", err, "run_id", runID)
		return err
	}
	if err := s.readRepo.SaveRun(ctx, run); err != nil {
		logging.Error(ctx, "failed to refresh read model", "error", err, "run_id", runID)
		return err
	}
	return nil
}

// InvalidateRun 删除读模型中的运行记录
func (s *SimulationProjectionService) InvalidateRun(ctx context.Context, runID string) error {
	return s.readRepo.DeleteRun(ctx, runID)
}
