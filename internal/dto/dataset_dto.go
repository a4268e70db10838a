package dto

import (
	"time"

	"predict-go/internal/dataset"
)

// PreviewRows 数据集预览行数
const PreviewRows = 10

// DatasetResponse 当前数据集概况和列校验结果
type DatasetResponse struct {
	FileName       string           `json:"file_name"`
	FileSize       int              `json:"file_size"`
	Encoding       string           `json:"encoding"`
	Warnings       []string         `json:"warnings"`
	RowCount       int              `json:"row_count"`
	Columns        []string         `json:"columns"`
	MissingColumns []string         `json:"missing_columns"`
	ExtraColumns   []string         `json:"extra_columns"`
	Predictable    bool             `json:"predictable"`
	Preview        [][]string       `json:"preview"`
	Quality        *dataset.Profile `json:"quality,omitempty"`
	UploadedAt     time.Time        `json:"uploaded_at"`
}

// SchemaResponse 必需列
type SchemaResponse struct {
	RequiredColumns []string `json:"required_columns"`
}
