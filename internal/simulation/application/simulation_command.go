package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/pkg/logging"
)

// SimulationCommandService 模拟命令服务。
// 所有领域错误在这里的边界被捕获并转换为 success=false 的结果，
// 不向接口层传播；每次调用的错误细节随结果返回，没有共享的错误槽。
type SimulationCommandService struct {
	engine    *domain.Engine
	repo      domain.SimulationRunRepository
	publisher domain.EventPublisher
}

// NewSimulationCommandService 创建模拟命令服务实例
func NewSimulationCommandService(
	engine *domain.Engine,
	repo domain.SimulationRunRepository,
	publisher domain.EventPublisher,
) *SimulationCommandService {
	return &SimulationCommandService{engine: engine, repo: repo, publisher: publisher}
}

// RunSingleAsset 执行单资产模拟
func (s *SimulationCommandService) RunSingleAsset(ctx context.Context, cmd RunSingleAssetCommand) (result *SimulationResultDTO) {
	runID := idgen.GenIDString()
	defer func() {
		if r := recover(); r != nil {
			result = s.failSingle(ctx, runID, cmd, domain.RunKindSingleAsset, fmt.Errorf("%w: %v", domain.ErrInternalFailure, r))
		}
	}()

	cfg, asset := toDomainConfig(cmd), toDomainAsset(cmd)
	outcome, err := s.engine.SimulateSingleAsset(cfg, asset)
	if err != nil {
		return s.failSingle(ctx, runID, cmd, domain.RunKindSingleAsset, err)
	}
	return s.completeSingle(ctx, runID, cmd, domain.RunKindSingleAsset, outcome)
}

// RunStressTest 执行压力测试：缩放波动率（及可选的预期收益）后委托单资产模拟
func (s *SimulationCommandService) RunStressTest(ctx context.Context, cmd RunStressTestCommand) (result *SimulationResultDTO) {
	runID := idgen.GenIDString()
	defer func() {
		if r := recover(); r != nil {
			result = s.failSingle(ctx, runID, cmd.RunSingleAssetCommand, domain.RunKindStressTest, fmt.Errorf("%w: %v", domain.ErrInternalFailure, r))
		}
	}()

	cfg, asset := toDomainConfig(cmd.RunSingleAssetCommand), toDomainAsset(cmd.RunSingleAssetCommand)
	outcome, err := s.engine.StressTest(cfg, asset, cmd.StressFactors)
	if err != nil {
		return s.failSingle(ctx, runID, cmd.RunSingleAssetCommand, domain.RunKindStressTest, err)
	}

	result = s.completeSingle(ctx, runID, cmd.RunSingleAssetCommand, domain.RunKindStressTest, outcome)
	if result.Success {
		event := domain.StressTestCompletedEvent{
			RunID:           runID,
			Symbol:          cmd.Symbol,
			VolatilityShock: cmd.StressFactors[0],
			StressedVaR:     result.Statistics.VaR,
			Timestamp:       time.Now(),
		}
		if len(cmd.StressFactors) > 1 {
			event.ReturnShock = cmd.StressFactors[1]
		}
		if err := s.publisher.Publish(ctx, domain.StressTestCompletedEventType, runID, event); err != nil {
			logging.Warn(ctx, "failed to publish stress test event", "error", err, "run_id", runID)
		}
	}
	return result
}

// RunPortfolio 执行组合模拟
func (s *SimulationCommandService) RunPortfolio(ctx context.Context, cmd RunPortfolioCommand) (result *PortfolioResultDTO) {
	runID := idgen.GenIDString()
	defer func() {
		if r := recover(); r != nil {
			result = s.failPortfolio(ctx, runID, cmd, fmt.Errorf("%w: %v", domain.ErrInternalFailure, r))
		}
	}()

	cfg := domain.SimulationConfig{
		PathCount:          cmd.PathCount,
		ConfidenceLevel:    cmd.ConfidenceLevel,
		Seed:               cmd.Seed,
		Distribution:       parseKind(cmd.Distribution),
		DistributionParams: cmd.DistributionParams,
	}
	spec := domain.PortfolioSpec{
		Assets:            make([]domain.AssetSpec, len(cmd.Assets)),
		Weights:           cmd.Weights,
		CorrelationMatrix: cmd.CorrelationMatrix,
	}
	for i, a := range cmd.Assets {
		spec.Assets[i] = domain.AssetSpec{
			Symbol:            a.Symbol,
			InitialPrice:      a.InitialPrice,
			ExpectedReturn:    a.ExpectedReturn,
			Volatility:        a.Volatility,
			HistoricalReturns: a.HistoricalReturns,
		}
	}

	outcome, err := s.engine.SimulatePortfolio(cfg, spec)
	if err != nil {
		return s.failPortfolio(ctx, runID, cmd, err)
	}

	contributions := make(map[string]string, len(cmd.Assets))
	for i, a := range cmd.Assets {
		contributions[a.Symbol] = decimal.NewFromFloat(outcome.VaRContributions[i]).String()
	}
	result = &PortfolioResultDTO{
		RunID:               runID,
		AssetCount:          len(cmd.Assets),
		Correlated:          len(cmd.CorrelationMatrix) > 0,
		PathCount:           cmd.PathCount,
		Confidence:          cmd.ConfidenceLevel,
		PortfolioVaR:        decimal.NewFromFloat(outcome.Statistics.VaR).String(),
		PortfolioCVaR:       decimal.NewFromFloat(outcome.Statistics.CVaR).String(),
		ExpectedReturn:      outcome.Statistics.Mean,
		PortfolioVolatility: outcome.Statistics.StdDev,
		VaRContributions:    contributions,
		MarginalVaR:         outcome.MarginalVaR,
		Success:             true,
	}

	run := &domain.SimulationRun{
		RunID:           runID,
		Kind:            domain.RunKindPortfolio,
		Symbol:          portfolioLabel(cmd.Assets),
		Distribution:    string(cfg.Distribution),
		PathCount:       cmd.PathCount,
		ConfidenceLevel: cmd.ConfidenceLevel,
		Seed:            cmd.Seed,
		VaR:             outcome.Statistics.VaR,
		CVaR:            outcome.Statistics.CVaR,
		Mean:            outcome.Statistics.Mean,
		StdDev:          outcome.Statistics.StdDev,
		Skewness:        outcome.Statistics.Skewness,
		ExcessKurtosis:  outcome.Statistics.ExcessKurtosis,
		Success:         true,
	}
	if err := s.repo.Save(ctx, run); err != nil {
		logging.Error(ctx, "failed to persist portfolio run", "error", err, "run_id", runID)
	}
	event := domain.PortfolioSimulationCompletedEvent{
		RunID:        runID,
		AssetCount:   len(cmd.Assets),
		Correlated:   len(cmd.CorrelationMatrix) > 0,
		PathCount:    cmd.PathCount,
		Confidence:   cmd.ConfidenceLevel,
		PortfolioVaR: result.PortfolioVaR,
		Timestamp:    time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.PortfolioSimulationCompletedEventType, runID, event); err != nil {
		logging.Warn(ctx, "failed to publish portfolio event", "error", err, "run_id", runID)
	}
	return result
}

func (s *SimulationCommandService) completeSingle(ctx context.Context, runID string, cmd RunSingleAssetCommand, kind domain.RunKind, outcome *domain.SimulationOutcome) *SimulationResultDTO {
	dto := &SimulationResultDTO{
		RunID:        runID,
		Symbol:       cmd.Symbol,
		Distribution: string(parseKind(cmd.Distribution)),
		PathCount:    cmd.PathCount,
		Confidence:   cmd.ConfidenceLevel,
		Statistics:   toStatisticsDTO(outcome.Statistics),
		Success:      true,
	}

	run := &domain.SimulationRun{
		RunID:           runID,
		Kind:            kind,
		Symbol:          cmd.Symbol,
		Distribution:    dto.Distribution,
		PathCount:       cmd.PathCount,
		ConfidenceLevel: cmd.ConfidenceLevel,
		Seed:            cmd.Seed,
		VaR:             outcome.Statistics.VaR,
		CVaR:            outcome.Statistics.CVaR,
		Mean:            outcome.Statistics.Mean,
		StdDev:          outcome.Statistics.StdDev,
		Skewness:        outcome.Statistics.Skewness,
		ExcessKurtosis:  outcome.Statistics.ExcessKurtosis,
		Success:         true,
	}
	if err := s.repo.Save(ctx, run); err != nil {
		logging.Error(ctx, "failed to persist simulation run", "error", err, "run_id", runID)
	}
	if kind == domain.RunKindSingleAsset {
		event := domain.SimulationCompletedEvent{
			RunID:        runID,
			Symbol:       cmd.Symbol,
			Distribution: dto.Distribution,
			PathCount:    cmd.PathCount,
			Confidence:   cmd.ConfidenceLevel,
			VaR:          dto.Statistics.VaR,
			CVaR:         dto.Statistics.CVaR,
			Timestamp:    time.Now(),
		}
		if err := s.publisher.Publish(ctx, domain.SimulationCompletedEventType, runID, event); err != nil {
			logging.Warn(ctx, "failed to publish simulation event", "error", err, "run_id", runID)
		}
	}
	return dto
}

func (s *SimulationCommandService) failSingle(ctx context.Context, runID string, cmd RunSingleAssetCommand, kind domain.RunKind, cause error) *SimulationResultDTO {
	logging.Error(ctx, "simulation failed", "error", cause, "run_id", runID, "kind", kind, "symbol", cmd.Symbol)
	s.recordFailure(ctx, runID, kind, cmd.Symbol, cmd, cause)
	return &SimulationResultDTO{
		RunID:        runID,
		Symbol:       cmd.Symbol,
		Distribution: string(parseKind(cmd.Distribution)),
		PathCount:    cmd.PathCount,
		Confidence:   cmd.ConfidenceLevel,
		Success:      false,
		ErrorMessage: cause.Error(),
	}
}

func (s *SimulationCommandService) failPortfolio(ctx context.Context, runID string, cmd RunPortfolioCommand, cause error) *PortfolioResultDTO {
	logging.Error(ctx, "portfolio simulation failed", "error", cause, "run_id", runID)
	s.recordFailure(ctx, runID, domain.RunKindPortfolio, portfolioLabel(cmd.Assets), RunSingleAssetCommand{
		PathCount:       cmd.PathCount,
		ConfidenceLevel: cmd.ConfidenceLevel,
		Seed:            cmd.Seed,
		Distribution:    cmd.Distribution,
	}, cause)
	return &PortfolioResultDTO{
		RunID:        runID,
		AssetCount:   len(cmd.Assets),
		PathCount:    cmd.PathCount,
		Confidence:   cmd.ConfidenceLevel,
		Success:      false,
		ErrorMessage: cause.Error(),
	}
}

func (s *SimulationCommandService) recordFailure(ctx context.Context, runID string, kind domain.RunKind, symbol string, cmd RunSingleAssetCommand, cause error) {
	run := &domain.SimulationRun{
		RunID:           runID,
		Kind:            kind,
		Symbol:          symbol,
		Distribution:    string(parseKind(cmd.Distribution)),
		PathCount:       cmd.PathCount,
		ConfidenceLevel: cmd.ConfidenceLevel,
		Seed:            cmd.Seed,
		Success:         false,
		ErrorMessage:    cause.Error(),
	}
	if err := s.repo.Save(ctx, run); err != nil {
		logging.Error(ctx, "failed to persist failed run", "error", err, "run_id", runID)
	}
	event := domain.SimulationFailedEvent{
		RunID:     runID,
		Kind:      string(kind),
		Reason:    cause.Error(),
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.SimulationFailedEventType, runID, event); err != nil {
		logging.Warn(ctx, "failed to publish failure event", "error", err, "run_id", runID)
	}
}

func toDomainConfig(cmd RunSingleAssetCommand) domain.SimulationConfig {
	return domain.SimulationConfig{
		PathCount:          cmd.PathCount,
		ConfidenceLevel:    cmd.ConfidenceLevel,
		Seed:               cmd.Seed,
		Distribution:       parseKind(cmd.Distribution),
		DistributionParams: cmd.DistributionParams,
		Antithetic:         cmd.Antithetic,
		ControlVariate:     cmd.ControlVariate,
	}
}

func toDomainAsset(cmd RunSingleAssetCommand) domain.AssetSpec {
	return domain.AssetSpec{
		Symbol:            cmd.Symbol,
		InitialPrice:      cmd.InitialPrice,
		ExpectedReturn:    cmd.ExpectedReturn,
		Volatility:        cmd.Volatility,
		HistoricalReturns: cmd.HistoricalReturns,
	}
}

func parseKind(kind string) domain.DistributionKind {
	if kind == "" {
		return domain.DistributionNormal
	}
	return domain.DistributionKind(strings.ToUpper(kind))
}

func portfolioLabel(assets []PortfolioAssetDTO) string {
	symbols := make([]string, len(assets))
	for i, a := range assets {
		symbols[i] = a.Symbol
	}
	return strings.Join(symbols, ",")
}
