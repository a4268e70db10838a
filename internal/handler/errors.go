package handler

import (
	"errors"
	"net/http"

	"predict-go/internal/dataset"
	"predict-go/internal/dto"
	"predict-go/internal/service"
	"predict-go/internal/utils"
	"predict-go/pkg/predictor"

	"github.com/gin-gonic/gin"
)

const (
	hintCSV        = "请确认文件是逗号分隔的CSV，并且每一行的列数与表头一致"
	hintConnection = "请确认预测服务已经启动，并检查 backend.base_url 配置"
	hintService    = "请检查上传的数据是否符合模型要求，或查看预测服务日志"
)

// respondError 把流程中的错误转换为状态码、提示信息、原始错误和排查建议
func respondError(c *gin.Context, err error) {
	var (
		malformed      *dataset.MalformedInputError
		notPredictable *service.NotPredictableError
		connErr        *predictor.ConnectionError
		serviceErr     *predictor.ServiceError
		responseErr    *predictor.MalformedResponseError
		sizeErr        *predictor.ResultSizeMismatchError
	)

	switch {
	case errors.As(err, &malformed):
		utils.ErrorWithDetail(c, http.StatusBadRequest, "无法解析上传的CSV文件",
			dto.ErrorDetail{Detail: malformed.Message, Hint: hintCSV})
	case errors.Is(err, service.ErrNoDataset):
		utils.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNoResult):
		utils.NotFound(c, err.Error())
	case errors.Is(err, service.ErrBusy):
		utils.ErrorResponse(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrDatasetReplaced):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.As(err, &notPredictable):
		utils.ErrorWithDetail(c, http.StatusUnprocessableEntity, "数据集缺少必需列，无法预测",
			dto.ErrorDetail{Detail: err.Error(), MissingColumns: notPredictable.Missing})
	case errors.As(err, &connErr):
		status, message := http.StatusBadGateway, "无法连接预测服务"
		if connErr.Timeout {
			status, message = http.StatusGatewayTimeout, "预测服务响应超时"
		}
		utils.ErrorWithDetail(c, status, message, dto.ErrorDetail{Detail: err.Error(), Hint: hintConnection})
	case errors.As(err, &serviceErr):
		utils.ErrorWithDetail(c, http.StatusBadGateway, "预测服务返回错误",
			dto.ErrorDetail{Detail: serviceErr.Detail, Hint: hintService})
	case errors.As(err, &responseErr):
		utils.ErrorWithDetail(c, http.StatusBadGateway, "预测服务返回了无法识别的结果",
			dto.ErrorDetail{Detail: responseErr.Reason})
	case errors.As(err, &sizeErr):
		utils.ErrorWithDetail(c, http.StatusBadGateway, "预测结果数量与数据行数不一致",
			dto.ErrorDetail{Detail: err.Error()})
	default:
		_ = c.Error(err)
		utils.InternalError(c, "服务器内部错误")
	}
}
