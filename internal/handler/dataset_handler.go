package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"predict-go/internal/dto"
	"predict-go/internal/middleware"
	"predict-go/internal/schema"
	"predict-go/internal/service"
	"predict-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// DatasetHandler 数据集上传和查看
type DatasetHandler struct {
	predictionService *service.PredictionService
	maxBytes          int64
}

// NewDatasetHandler 创建数据集处理器
func NewDatasetHandler(predictionService *service.PredictionService, maxBytes int64) *DatasetHandler {
	return &DatasetHandler{predictionService: predictionService, maxBytes: maxBytes}
}

// Upload 上传CSV，替换当前数据集
// @Router /api/datasets [post]
func (h *DatasetHandler) Upload(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "文件上传失败: "+err.Error())
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		utils.BadRequest(c, "只支持CSV文件")
		return
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("文件大小不能超过%dMB", h.maxBytes>>20))
		return
	}

	src, err := header.Open()
	if err != nil {
		utils.BadRequest(c, "打开文件失败: "+err.Error())
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		utils.BadRequest(c, "读取文件失败: "+err.Error())
		return
	}

	resp, err := h.predictionService.Upload(userID, filepath.Base(header.Filename), content)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "文件上传成功", resp)
}

// Current 当前数据集概况和列校验结果
// @Router /api/datasets/current [get]
func (h *DatasetHandler) Current(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resp, err := h.predictionService.Current(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, resp)
}

// Quality 当前数据集的数据质量报告
// @Router /api/datasets/current/quality [get]
func (h *DatasetHandler) Quality(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	profile, err := h.predictionService.Quality(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}

// Schema 必需列
// @Router /api/schema [get]
func (h *DatasetHandler) Schema(c *gin.Context) {
	utils.SuccessResponse(c, dto.SchemaResponse{RequiredColumns: schema.Required.Columns()})
}
