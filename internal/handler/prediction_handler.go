package handler

import (
	"net/http"
	"net/url"

	"predict-go/internal/middleware"
	"predict-go/internal/service"
	"predict-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// PredictionHandler 预测、结果查看和导出
type PredictionHandler struct {
	predictionService *service.PredictionService
}

// NewPredictionHandler 创建预测处理器
func NewPredictionHandler(predictionService *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

// Predict 对当前数据集发起预测
// @Router /api/predictions [post]
func (h *PredictionHandler) Predict(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resp, err := h.predictionService.Predict(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "预测完成", resp)
}

// Current 当前数据集的预测结果
// @Router /api/predictions/current [get]
func (h *PredictionHandler) Current(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resp, err := h.predictionService.Results(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, resp)
}

// Export 下载预测结果，format 为 csv 或 json
// @Router /api/predictions/current/export [get]
func (h *PredictionHandler) Export(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var (
		file *service.ExportFile
		err  error
	)
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		file, err = h.predictionService.ExportCSV(userID)
	case "json":
		file, err = h.predictionService.ExportJSON(userID)
	default:
		utils.BadRequest(c, "不支持的导出格式: "+format)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+file.Name+"\"; filename*=UTF-8''"+url.PathEscape(file.Name))
	c.Data(http.StatusOK, file.ContentType+"; charset=utf-8", file.Content)
}

// Health 预测服务健康状态，仅供展示，不影响预测
// @Router /api/health [get]
func (h *PredictionHandler) Health(c *gin.Context) {
	utils.SuccessResponse(c, h.predictionService.Health(c.Request.Context()))
}
