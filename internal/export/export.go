package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"predict-go/internal/dataset"
	"predict-go/internal/summary"
	"predict-go/pkg/predictor"
)

const (
	PredictionColumn = "Prediction"
	TimestampColumn  = "Timestamp"

	// TimestampLayout CSV中的时间格式
	TimestampLayout = "2006-01-02 15:04:05"
	// ISOLayout JSON元数据中的时间格式
	ISOLayout = "2006-01-02T15:04:05.000000Z07:00"

	fileTimeLayout = "20060102_150405"
)

// Metadata JSON导出的元数据
type Metadata struct {
	Timestamp        string `json:"timestamp"`
	TotalPredictions int    `json:"total_predictions"`
	ModelVersion     string `json:"model_version"`
	FileName         string `json:"file_name"`
}

// SummaryStatistics JSON导出的统计块，空结果时 most_common 为 null
type SummaryStatistics struct {
	UniqueValues int              `json:"unique_values"`
	MostCommon   *predictor.Value `json:"most_common"`
}

// Document JSON导出文档，字段顺序固定
type Document struct {
	Metadata          Metadata          `json:"metadata"`
	Predictions       predictor.Result  `json:"predictions"`
	SummaryStatistics SummaryStatistics `json:"summary_statistics"`
}

// BuildCSV 原始列 + Prediction + Timestamp，每个数据行一行
func BuildCSV(ds *dataset.Dataset, result predictor.Result, at time.Time) ([]byte, error) {
	if err := checkSize(ds, result); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append(ds.Columns(), PredictionColumn, TimestampColumn)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}

	stamp := at.Format(TimestampLayout)
	for i := 0; i < ds.RowCount(); i++ {
		record := append(ds.Row(i), result[i].String(), stamp)
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("写入第%d行失败: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("写入CSV失败: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildJSON 生成包含元数据、原始预测数组和统计信息的JSON
func BuildJSON(ds *dataset.Dataset, result predictor.Result, stats *summary.Stats, fileName, modelVersion string, at time.Time) ([]byte, error) {
	if err := checkSize(ds, result); err != nil {
		return nil, err
	}

	predictions := result
	if predictions == nil {
		predictions = predictor.Result{}
	}

	doc := Document{
		Metadata: Metadata{
			Timestamp:        at.Format(ISOLayout),
			TotalPredictions: len(result),
			ModelVersion:     modelVersion,
			FileName:         fileName,
		},
		Predictions: predictions,
		SummaryStatistics: SummaryStatistics{
			UniqueValues: stats.UniqueCount(),
			MostCommon:   mostCommon(result, stats),
		},
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("序列化JSON失败: %w", err)
	}
	return out, nil
}

// FileName 下载文件名，例如 predictions_20240102_150405.csv
func FileName(at time.Time, ext string) string {
	return fmt.Sprintf("predictions_%s.%s", at.Format(fileTimeLayout), ext)
}

// mostCommon 返回众数对应的原始值，保留数字类型
func mostCommon(result predictor.Result, stats *summary.Stats) *predictor.Value {
	mode, ok := stats.Mode()
	if !ok {
		return nil
	}
	for i := range result {
		if result[i].String() == mode {
			v := result[i]
			return &v
		}
	}
	return nil
}

func checkSize(ds *dataset.Dataset, result predictor.Result) error {
	if len(result) != ds.RowCount() {
		return &predictor.ResultSizeMismatchError{Expected: ds.RowCount(), Got: len(result)}
	}
	return nil
}
