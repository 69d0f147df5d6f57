package mysql

import (
	"time"

	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
)

// SimulationRunModel MySQL 模拟运行表映射
type SimulationRunModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt       time.Time `gorm:"column:created_at;index"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
	RunID           string    `gorm:"column:run_id;type:varchar(64);uniqueIndex;not null"`
	Kind            string    `gorm:"column:kind;type:varchar(20);not null"`
	Symbol          string    `gorm:"column:symbol;type:varchar(255)"`
	Distribution    string    `gorm:"column:distribution;type:varchar(20);not null"`
	PathCount       int       `gorm:"column:path_count;not null"`
	ConfidenceLevel float64   `gorm:"column:confidence_level;type:decimal(6,4);not null"`
	Seed            uint64    `gorm:"column:seed"`
	VaR             float64   `gorm:"column:var_value;type:decimal(20,10)"`
	CVaR            float64   `gorm:"column:cvar_value;type:decimal(20,10)"`
	Mean            float64   `gorm:"column:mean;type:decimal(20,10)"`
	StdDev          float64   `gorm:"column:std_dev;type:decimal(20,10)"`
	Skewness        float64   `gorm:"column:skewness;type:decimal(20,10)"`
	ExcessKurtosis  float64   `gorm:"column:excess_kurtosis;type:decimal(20,10)"`
	Success         bool      `gorm:"column:success;not null"`
	ErrorMessage    string    `gorm:"column:error_message;type:text"`
}

func (SimulationRunModel) TableName() string {
	return "simulation_runs"
}

func toRunModel(run *domain.SimulationRun) *SimulationRunModel {
	if run == nil {
		return nil
	}
	return &SimulationRunModel{
		ID:              run.ID,
		CreatedAt:       run.CreatedAt,
		UpdatedAt:       run.UpdatedAt,
		RunID:           run.RunID,
		Kind:            string(run.Kind),
		Symbol:          run.Symbol,
		Distribution:    run.Distribution,
		PathCount:       run.PathCount,
		ConfidenceLevel: run.ConfidenceLevel,
		Seed:            run.Seed,
		VaR:             run.VaR,
		CVaR:            run.CVaR,
		Mean:            run.Mean,
		StdDev:          run.StdDev,
		Skewness:        run.Skewness,
		ExcessKurtosis:  run.ExcessKurtosis,
		Success:         run.Success,
		ErrorMessage:    run.ErrorMessage,
	}
}

func toRun(model *SimulationRunModel) *domain.SimulationRun {
	if model == nil {
		return nil
	}
	return &domain.SimulationRun{
		ID:              model.ID,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		RunID:           model.RunID,
		Kind:            domain.RunKind(model.Kind),
		Symbol:          model.Symbol,
		Distribution:    model.Distribution,
		PathCount:       model.PathCount,
		ConfidenceLevel: model.ConfidenceLevel,
		Seed:            model.Seed,
		VaR:             model.VaR,
		CVaR:            model.CVaR,
		Mean:            model.Mean,
		StdDev:          model.StdDev,
		Skewness:        model.Skewness,
		ExcessKurtosis:  model.ExcessKurtosis,
		Success:         model.Success,
		ErrorMessage:    model.ErrorMessage,
	}
}
