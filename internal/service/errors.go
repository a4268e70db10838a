package service

import (
	"errors"
	"strings"
)

var (
	// ErrNoDataset 用户还没有上传数据集
	ErrNoDataset = errors.New("尚未上传数据集")
	// ErrNoResult 当前数据集还没有预测结果
	ErrNoResult = errors.New("当前数据集还没有预测结果")
	// ErrBusy 预测并发槽位已满
	ErrBusy = errors.New("预测服务繁忙，请稍后重试")
	// ErrDatasetReplaced 预测期间用户上传了新的数据集
	ErrDatasetReplaced = errors.New("预测期间数据集已被替换，请重新发起预测")
)

// NotPredictableError 数据集缺少必需列，不能发起预测
type NotPredictableError struct {
	Missing []string
}

func (e *NotPredictableError) Error() string {
	return "数据集缺少必需列: " + strings.Join(e.Missing, ", ")
}
