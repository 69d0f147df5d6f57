// Package consumer 模拟事件的 Kafka 消费端，负责刷新读模型
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/financialrisk/internal/simulation/application"
	"github.com/wyfcoding/financialrisk/internal/simulation/domain"
)

type ProjectionHandler struct {
	projector *application.SimulationProjectionService
	logger    *slog.Logger
}

func NewProjectionHandler(projector *application.SimulationProjectionService, logger *slog.Logger) *ProjectionHandler {
	return &ProjectionHandler{projector: projector, logger: logger}
}

func (h *ProjectionHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case domain.SimulationCompletedEventType,
		domain.PortfolioSimulationCompletedEventType,
		domain.StressTestCompletedEventType,
		domain.SimulationFailedEventType:
		var payload struct {
			RunID string `json:"run_id"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal simulation event", "error", err)
			return err
		}
		return h.projector.RefreshRun(ctx, payload.RunID)
	default:
		h.logger.WarnContext(ctx, "unknown simulation event topic", "topic", msg.Topic)
		return nil
	}
}
