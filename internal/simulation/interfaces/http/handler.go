// Package http 模拟引擎的 HTTP 接口
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/financialrisk/internal/simulation/application"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// SimulationHandler 负责处理与风险模拟相关的 HTTP 请求
type SimulationHandler struct {
	cmd     *application.SimulationCommandService
	query   *application.SimulationQueryService
	compute *application.ComputeService
}

// NewSimulationHandler 创建 HTTP 处理器
func NewSimulationHandler(
	cmd *application.SimulationCommandService,
	query *application.SimulationQueryService,
	compute *application.ComputeService,
) *SimulationHandler {
	return &SimulationHandler{cmd: cmd, query: query, compute: compute}
}

// RegisterRoutes 注册路由
func (h *SimulationHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/simulation")
	{
		api.POST("/single", h.RunSingleAsset)
		api.POST("/portfolio", h.RunPortfolio)
		api.POST("/stress", h.RunStressTest)
		api.POST("/var", h.ComputeVaR)
		api.POST("/option-check", h.CrossValidateOption)
		api.GET("/runs", h.ListRuns)
		api.GET("/runs/:run_id", h.GetRun)
	}
}

// RunSingleAsset 执行单资产模拟
func (h *SimulationHandler) RunSingleAsset(c *gin.Context) {
	var cmd application.RunSingleAssetCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	response.Success(c, h.cmd.RunSingleAsset(c.Request.Context(), cmd))
}

// RunPortfolio 执行组合模拟
func (h *SimulationHandler) RunPortfolio(c *gin.Context) {
	var cmd application.RunPortfolioCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	response.Success(c, h.cmd.RunPortfolio(c.Request.Context(), cmd))
}

// RunStressTest 执行压力测试
func (h *SimulationHandler) RunStressTest(c *gin.Context) {
	var cmd application.RunStressTestCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	response.Success(c, h.cmd.RunStressTest(c.Request.Context(), cmd))
}

// ComputeVaR 对给定收益样本直接计算 VaR 与 CVaR
func (h *SimulationHandler) ComputeVaR(c *gin.Context) {
	var req struct {
		Returns    []float64 `json:"returns"`
		Confidence float64   `json:"confidence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	varValue, err := h.compute.ComputeVaRFromSample(c.Request.Context(), req.Returns, req.Confidence)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	cvarValue, err := h.compute.ComputeCVaRFromSample(c.Request.Context(), req.Returns, req.Confidence)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"var": varValue, "cvar": cvarValue})
}

// CrossValidateOption 用模拟交叉验证期权解析定价
func (h *SimulationHandler) CrossValidateOption(c *gin.Context) {
	var req struct {
		application.RunSingleAssetCommand
		OptionType string  `json:"option_type"`
		Strike     float64 `json:"strike"`
		RiskFree   float64 `json:"risk_free"`
		Maturity   float64 `json:"maturity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	response.Success(c, h.compute.CrossValidateOptionCommand(c.Request.Context(), req.RunSingleAssetCommand, req.OptionType, req.Strike, req.RiskFree, req.Maturity))
}

// ListRuns 查询最近的模拟记录
func (h *SimulationHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.query.ListRuns(c.Request.Context(), limit)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to list simulation runs", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, runs)
}

// GetRun 按运行 ID 查询模拟记录
func (h *SimulationHandler) GetRun(c *gin.Context) {
	runID := c.Param("run_id")
	if runID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "run_id is required", "")
		return
	}

	run, err := h.query.GetRun(c.Request.Context(), runID)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get simulation run", "run_id", runID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if run == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "run not found", "")
		return
	}
	response.Success(c, run)
}
