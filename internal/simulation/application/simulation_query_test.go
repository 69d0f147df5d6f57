package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
)

type fakeReadRepository struct {
	mu   sync.Mutex
	runs map[string]*domain.SimulationRun
}

func newFakeReadRepository() *fakeReadRepository {
	return &fakeReadRepository{runs: make(map[string]*domain.SimulationRun)}
}

func (r *fakeReadRepository) SaveRun(ctx context.Context, run *domain.SimulationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.RunID] = run
	return nil
}

func (r *fakeReadRepository) GetRun(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[runID], nil
}

func (r *fakeReadRepository) DeleteRun(ctx context.Context, runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, runID)
	return nil
}

func TestGetRunReadThrough(t *testing.T) {
	repo := newFakeRunRepository()
	readRepo := newFakeReadRepository()
	svc := NewSimulationQueryService(repo, readRepo)

	run := &domain.SimulationRun{RunID: "run-1", Kind: domain.RunKindSingleAsset, Symbol: "AAPL", VaR: 0.03, Success: true}
	require.NoError(t, repo.Save(context.Background(), run))

	// 读模型未命中，回源数据库并回填
	dto, err := svc.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.NotNil(t, dto)
	assert.Equal(t, "AAPL", dto.Symbol)
	assert.Equal(t, 1, repo.reads)

	cached, err := readRepo.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.NotNil(t, cached)

	// 第二次命中读模型，不再回源
	_, err = svc.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reads)
}

func TestGetRunNotFound(t *testing.T) {
	svc := NewSimulationQueryService(newFakeRunRepository(), newFakeReadRepository())

	dto, err := svc.GetRun(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, dto)
}

func TestListRuns(t *testing.T) {
	repo := newFakeRunRepository()
	svc := NewSimulationQueryService(repo, newFakeReadRepository())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(context.Background(), &domain.SimulationRun{RunID: id, Success: true}))
	}

	dtos, err := svc.ListRuns(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, dtos, 2)

	// 非法 limit 回退默认值
	dtos, err = svc.ListRuns(context.Background(), -1)
	require.NoError(t, err)
	assert.Len(t, dtos, 3)
}

func TestProjectionRefreshRun(t *testing.T) {
	repo := newFakeRunRepository()
	readRepo := newFakeReadRepository()
	svc := NewSimulationProjectionService(repo, readRepo)

	run := &domain.SimulationRun{RunID: "run-9", Kind: domain.RunKindPortfolio, Success: true}
	require.NoError(t, repo.Save(context.Background(), run))

	require.NoError(t, svc.RefreshRun(context.Background(), "run-9"))
	cached, err := readRepo.GetRun(context.Background(), "run-9")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, domain.RunKindPortfolio, cached.Kind)

	require.NoError(t, svc.InvalidateRun(context.Background(), "run-9"))
	cached, err = readRepo.GetRun(context.Background(), "run-9")
	require.NoError(t, err)
	assert.Nil(t, cached)
}
