// Package mysql 模拟运行的 MySQL 持久化实现
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
)

type simulationRunRepository struct{ db *gorm.DB }

// NewSimulationRunRepository 创建模拟运行仓储实例
func NewSimulationRunRepository(db *gorm.DB) domain.SimulationRunRepository {
	return &simulationRunRepository{db: db}
}

func (r *simulationRunRepository) Save(ctx context.Context, run *domain.SimulationRun) error {
	db := r.getDB(ctx)
	model := toRunModel(run)
	if model.ID == 0 {
		if err := db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		run.ID = model.ID
		run.CreatedAt = model.CreatedAt
		run.UpdatedAt = model.UpdatedAt
		return nil
	}

	return db.WithContext(ctx).
		Model(&SimulationRunModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"var_value":     model.VaR,
			"cvar_value":    model.CVaR,
			"mean":          model.Mean,
			"std_dev":       model.StdDev,
			"success":       model.Success,
			"error_message": model.ErrorMessage,
		}).Error
}

func (r *simulationRunRepository) GetByRunID(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	var model SimulationRunModel
	err := r.getDB(ctx).WithContext(ctx).Where("run_id = ?", runID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toRun(&model), nil
}

func (r *simulationRunRepository) List(ctx context.Context, limit int) ([]*domain.SimulationRun, error) {
	var models []SimulationRunModel
	err := r.getDB(ctx).WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	runs := make([]*domain.SimulationRun, 0, len(models))
	for i := range models {
		runs = append(runs, toRun(&models[i]))
	}
	return runs, nil
}

func (r *simulationRunRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
