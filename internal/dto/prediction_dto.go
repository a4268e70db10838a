package dto

import (
	"time"

	"predict-go/internal/summary"
	"predict-go/pkg/predictor"
)

// SummaryResponse 预测结果统计，不适用的指标为 "N/A"
type SummaryResponse struct {
	Kind             summary.Kind        `json:"kind"`
	TotalPredictions int                 `json:"total_predictions"`
	Mean             string              `json:"mean"`
	Min              string              `json:"min"`
	Max              string              `json:"max"`
	MostCommon       string              `json:"most_common"`
	UniqueValues     int                 `json:"unique_values"`
	Frequencies      []summary.Frequency `json:"frequencies"`
}

// PredictionResponse 原始数据与预测结果拼接后的表格
type PredictionResponse struct {
	RunID       string           `json:"run_id"`
	FileName    string           `json:"file_name"`
	Columns     []string         `json:"columns"`
	Rows        [][]string       `json:"rows"`
	Predictions predictor.Result `json:"predictions"`
	Summary     SummaryResponse  `json:"summary"`
	DurationMs  int64            `json:"duration_ms"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ErrorDetail 错误详情和排查建议
type ErrorDetail struct {
	Detail         string   `json:"detail,omitempty"`
	Hint           string   `json:"hint,omitempty"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}
