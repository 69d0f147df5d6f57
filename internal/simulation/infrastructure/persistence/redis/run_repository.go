// Package redis 模拟运行读模型的 Redis 实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
)

type runReadRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRunReadRepository 创建模拟运行读模型实例
func NewRunReadRepository(client redis.UniversalClient) domain.SimulationRunReadRepository {
	return &runReadRepository{
		client: client,
		prefix: "risksim:",
		ttl:    1 * time.Hour,
	}
}

func (r *runReadRepository) SaveRun(ctx context.Context, run *domain.SimulationRun) error {
	if run == nil {
		return nil
	}
	key := fmt.Sprintf("%srun:%s", r.prefix, run.RunID)
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *runReadRepository) GetRun(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	key := fmt.Sprintf("%srun:%s", r.prefix, runID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var run domain.SimulationRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runReadRepository) DeleteRun(ctx context.Context, runID string) error {
	key := fmt.Sprintf("%srun:%s", r.prefix, runID)
	return r.client.Del(ctx, key).Err()
}
