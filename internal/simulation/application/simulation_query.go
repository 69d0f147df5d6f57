package application

import (
	"context"

	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
	"github.com/wyfcoding/pkg/logging"
)

// SimulationQueryService 模拟查询服务：优先读 Redis 读模型，未命中回源 MySQL
type SimulationQueryService struct {
	repo     domain.SimulationRunRepository
	readRepo domain.SimulationRunReadRepository
}

// NewSimulationQueryService 创建模拟查询服务实例
func NewSimulationQueryService(repo domain.SimulationRunRepository, readRepo domain.SimulationRunReadRepository) *SimulationQueryService {
	return &SimulationQueryService{repo: repo, readRepo: readRepo}
}

// GetRun 按运行 ID 查询模拟记录
func (s *SimulationQueryService) GetRun(ctx context.Context, runID string) (*SimulationRunDTO, error) {
	if s.readRepo != nil {
		run, err := s.readRepo.GetRun(ctx, runID)
		if err != nil {
			logging.Warn(ctx, "read model lookup failed, falling back to database", "error", err, "run_id", runID)
		} else if run != nil {
			return toRunDTO(run), nil
		}
	}

	run, err := s.repo.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run != nil && s.readRepo != nil {
		if err := s.readRepo.SaveRun(ctx, run); err != nil {
			logging.Warn(ctx, "failed to backfill read model", "error", err, "run_id", runID)
		}
	}
	return toRunDTO(run), nil
}

// ListRuns 查询最近的模拟记录
func (s *SimulationQueryService) ListRuns(ctx context.Context, limit int) ([]*SimulationRunDTO, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*SimulationRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run))
	}
	return dtos, nil
}
