package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"predict-go/pkg/predictor"
)

// PredictionRun 一次成功的预测结果，绑定到产生它的数据文件
type PredictionRun struct {
	ID             uint             `gorm:"primarykey" json:"id"`
	RunID          string           `gorm:"uniqueIndex;size:36;not null" json:"run_id"`
	UserID         uint             `gorm:"not null;index" json:"user_id"`
	DataFileID     uint             `gorm:"not null;index" json:"data_file_id"`
	Predictions    PredictionValues `gorm:"type:text;not null" json:"predictions"`
	NumPredictions int              `gorm:"not null" json:"num_predictions"`
	Kind           string           `gorm:"size:20" json:"kind"`
	DurationMs     int64            `json:"duration_ms"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TableName 指定表名
func (PredictionRun) TableName() string {
	return "prediction_runs"
}

// PredictionValues 以JSON数组存储预测结果
type PredictionValues predictor.Result

// Scan 实现sql.Scanner接口
func (p *PredictionValues) Scan(value interface{}) error {
	if value == nil {
		*p = PredictionValues{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("无法解析预测结果类型: %T", value)
	}

	var result predictor.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	*p = PredictionValues(result)
	return nil
}

// Value 实现driver.Valuer接口
func (p PredictionValues) Value() (driver.Value, error) {
	result := predictor.Result(p)
	if result == nil {
		result = predictor.Result{}
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Result 转换为预测结果
func (p PredictionValues) Result() predictor.Result {
	return predictor.Result(p)
}
