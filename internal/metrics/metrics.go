package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetUploads 按编码和结果统计的上传次数
	DatasetUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "predict",
		Name:      "dataset_uploads_total",
		Help:      "Number of dataset uploads by detected encoding and outcome.",
	}, []string{"encoding", "outcome"})

	// PredictionRequests 按结果统计的预测请求次数
	PredictionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "predict",
		Name:      "prediction_requests_total",
		Help:      "Number of prediction requests sent to the backend by outcome.",
	}, []string{"outcome"})

	// PredictionDuration 预测请求耗时
	PredictionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "predict",
		Name:      "prediction_duration_seconds",
		Help:      "Duration of prediction requests sent to the backend.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"outcome"})

	// PredictedRows 成功预测的行数
	PredictedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "predict",
		Name:      "predicted_rows_total",
		Help:      "Number of rows that received a prediction.",
	})

	// Exports 按格式统计的导出次数
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "predict",
		Name:      "exports_total",
		Help:      "Number of result exports by format.",
	}, []string{"format"})
)

// 上传和预测的结果标签
const (
	OutcomeSuccess    = "success"
	OutcomeMalformed  = "malformed"
	OutcomeConnection = "connection_error"
	OutcomeService    = "service_error"
	OutcomeResponse   = "malformed_response"
	OutcomeMismatch   = "size_mismatch"
	OutcomeError      = "error"
)

// ObservePrediction 记录一次预测请求
func ObservePrediction(outcome string, elapsed time.Duration, rows int) {
	PredictionRequests.WithLabelValues(outcome).Inc()
	PredictionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		PredictedRows.Add(float64(rows))
	}
}
