package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
)

type fakeRunRepository struct {
	mu    sync.Mutex
	runs  []*domain.SimulationRun
	byID  map[string]*domain.SimulationRun
	reads int
}

func newFakeRunRepository() *fakeRunRepository {
	return &fakeRunRepository{byID: make(map[string]*domain.SimulationRun)}
}

func (r *fakeRunRepository) Save(ctx context.Context, run *domain.SimulationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uint(len(r.runs) + 1)
	r.runs = append(r.runs, run)
	r.byID[run.RunID] = run
	return nil
}

func (r *fakeRunRepository) GetByRunID(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	return r.byID[runID], nil
}

func (r *fakeRunRepository) List(ctx context.Context, limit int) ([]*domain.SimulationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	return r.runs[:limit], nil
}

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *fakePublisher) Publish(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *fakePublisher) PublishInTx(ctx context.Context, tx any, topic, key string, event any) error {
	return p.Publish(ctx, topic, key, event)
}

func newCommandService() (*SimulationCommandService, *fakeRunRepository, *fakePublisher) {
	repo := newFakeRunRepository()
	pub := &fakePublisher{}
	return NewSimulationCommandService(domain.NewEngine(), repo, pub), repo, pub
}

func singleAssetCommand() RunSingleAssetCommand {
	return RunSingleAssetCommand{
		Symbol:          "AAPL",
		InitialPrice:    150,
		ExpectedReturn:  0.05,
		Volatility:      0.2,
		PathCount:       2000,
		ConfidenceLevel: 0.95,
		Seed:            42,
	}
}

func TestRunSingleAssetSuccess(t *testing.T) {
	svc, repo, pub := newCommandService()

	result := svc.RunSingleAsset(context.Background(), singleAssetCommand())
	require.True(t, result.Success)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "NORMAL", result.Distribution)
	assert.NotEmpty(t, result.Statistics.VaR)

	require.Len(t, repo.runs, 1)
	assert.Equal(t, domain.RunKindSingleAsset, repo.runs[0].Kind)
	assert.True(t, repo.runs[0].Success)
	assert.Contains(t, pub.topics, domain.SimulationCompletedEventType)
}

func TestRunSingleAssetInvalidInputBecomesFailureOutcome(t *testing.T) {
	svc, repo, pub := newCommandService()

	cmd := singleAssetCommand()
	cmd.PathCount = 0
	result := svc.RunSingleAsset(context.Background(), cmd)

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "invalid input")

	require.Len(t, repo.runs, 1)
	assert.False(t, repo.runs[0].Success)
	assert.Contains(t, pub.topics, domain.SimulationFailedEventType)
}

func TestRunSingleAssetNumericDegeneracyBecomesFailureOutcome(t *testing.T) {
	svc, _, _ := newCommandService()

	cmd := singleAssetCommand()
	cmd.HistoricalReturns = []float64{0.01}
	result := svc.RunSingleAsset(context.Background(), cmd)

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "numeric degeneracy")
}

func TestRunStressTest(t *testing.T) {
	svc, repo, pub := newCommandService()

	cmd := RunStressTestCommand{RunSingleAssetCommand: singleAssetCommand(), StressFactors: []float64{2.0}}
	result := svc.RunStressTest(context.Background(), cmd)

	require.True(t, result.Success)
	require.Len(t, repo.runs, 1)
	assert.Equal(t, domain.RunKindStressTest, repo.runs[0].Kind)
	assert.Contains(t, pub.topics, domain.StressTestCompletedEventType)
	assert.NotContains(t, pub.topics, domain.SimulationCompletedEventType)
}

func TestRunStressTestMissingFactors(t *testing.T) {
	svc, _, pub := newCommandService()

	cmd := RunStressTestCommand{RunSingleAssetCommand: singleAssetCommand()}
	result := svc.RunStressTest(context.Background(), cmd)

	require.False(t, result.Success)
	assert.Contains(t, pub.topics, domain.SimulationFailedEventType)
}

func TestRunPortfolio(t *testing.T) {
	svc, repo, pub := newCommandService()

	cmd := RunPortfolioCommand{
		Assets: []PortfolioAssetDTO{
			{Symbol: "AAPL", InitialPrice: 150, Volatility: 0.2},
			{Symbol: "MSFT", InitialPrice: 300, Volatility: 0.3},
		},
		Weights:           []float64{0.6, 0.4},
		CorrelationMatrix: [][]float64{{1, 0.5}, {0.5, 1}},
		PathCount:         2000,
		ConfidenceLevel:   0.95,
		Seed:              42,
	}
	result := svc.RunPortfolio(context.Background(), cmd)

	require.True(t, result.Success)
	assert.Equal(t, 2, result.AssetCount)
	assert.True(t, result.Correlated)
	assert.Contains(t, result.VaRContributions, "AAPL")
	assert.Contains(t, result.MarginalVaR, "MSFT")

	require.Len(t, repo.runs, 1)
	assert.Equal(t, domain.RunKindPortfolio, repo.runs[0].Kind)
	assert.Equal(t, "AAPL,MSFT", repo.runs[0].Symbol)
	assert.Contains(t, pub.topics, domain.PortfolioSimulationCompletedEventType)
}

func TestRunPortfolioBadCorrelationMatrix(t *testing.T) {
	svc, _, _ := newCommandService()

	cmd := RunPortfolioCommand{
		Assets: []PortfolioAssetDTO{
			{Symbol: "AAPL", InitialPrice: 150, Volatility: 0.2},
			{Symbol: "MSFT", InitialPrice: 300, Volatility: 0.3},
		},
		Weights:           []float64{0.5, 0.5},
		CorrelationMatrix: [][]float64{{1, 0.5}, {0.4, 1}},
		PathCount:         500,
		ConfidenceLevel:   0.95,
	}
	result := svc.RunPortfolio(context.Background(), cmd)

	require.False(t, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
}
