package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"predict-go/internal/config"
	"predict-go/internal/dataset"
	"predict-go/internal/dto"
	"predict-go/internal/export"
	"predict-go/internal/metrics"
	"predict-go/internal/models"
	"predict-go/internal/repository"
	"predict-go/internal/schema"
	"predict-go/internal/summary"
	"predict-go/pkg/limiter"
	"predict-go/pkg/predictor"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// slotKey 所有用户共享的后端并发槽位
const slotKey = "backend"

// Predictor 预测服务客户端
type Predictor interface {
	Predict(ctx context.Context, fileName string, ds *dataset.Dataset) (predictor.Result, error)
	Health(ctx context.Context) predictor.HealthStatus
}

// ExportFile 导出文件
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// PredictionService 上传、校验、预测和导出流程
type PredictionService struct {
	fileRepo *repository.DataFileRepository
	runRepo  *repository.PredictionRunRepository
	client   Predictor
	limiter  limiter.Limiter
	cfg      *config.Config
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewPredictionService 创建预测流程服务
func NewPredictionService(
	fileRepo *repository.DataFileRepository,
	runRepo *repository.PredictionRunRepository,
	client Predictor,
	lim limiter.Limiter,
	cfg *config.Config,
	logger logrus.FieldLogger,
) *PredictionService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PredictionService{
		fileRepo: fileRepo,
		runRepo:  runRepo,
		client:   client,
		limiter:  lim,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Upload 解析并校验上传的CSV，成功后替换用户当前的数据集和预测结果。
// 解析失败时清空用户当前的数据集。
func (s *PredictionService) Upload(userID uint, fileName string, raw []byte) (*dto.DatasetResponse, error) {
	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "file_name": fileName, "size": len(raw)})

	ds, info, err := dataset.Ingest(raw)
	if err != nil {
		metrics.DatasetUploads.WithLabelValues("unknown", metrics.OutcomeMalformed).Inc()
		if clearErr := s.fileRepo.ClearUser(userID); clearErr != nil {
			log.WithError(clearErr).Error("清除旧数据集失败")
		}
		log.WithError(err).Warn("数据集解析失败")
		return nil, err
	}

	report := schema.Validate(ds.Columns(), schema.Required)
	file := &models.DataFile{
		Filename:    fileName,
		FileContent: raw,
		FileSize:    len(raw),
		Encoding:    info.Encoding,
		RowCount:    ds.RowCount(),
		ColumnCount: len(ds.Columns()),
		UserID:      userID,
	}
	if err := s.fileRepo.ReplaceForUser(file); err != nil {
		metrics.DatasetUploads.WithLabelValues(info.Encoding, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("保存数据集失败: %w", err)
	}
	metrics.DatasetUploads.WithLabelValues(info.Encoding, metrics.OutcomeSuccess).Inc()

	log.WithFields(logrus.Fields{
		"encoding":    info.Encoding,
		"rows":        ds.RowCount(),
		"missing":     len(report.Missing),
		"extra":       len(report.Extra),
		"predictable": report.Predictable(),
	}).Info("数据集上传成功")

	resp := datasetResponse(file, ds, info, report)
	resp.Quality = dataset.BuildProfile(ds, schema.Required.Columns())
	return resp, nil
}

// Current 当前数据集概况
func (s *PredictionService) Current(userID uint) (*dto.DatasetResponse, error) {
	file, ds, info, err := s.loadCurrent(userID)
	if err != nil {
		return nil, err
	}
	return datasetResponse(file, ds, info, schema.Validate(ds.Columns(), schema.Required)), nil
}

// Quality 当前数据集的数据质量报告
func (s *PredictionService) Quality(userID uint) (*dataset.Profile, error) {
	_, ds, _, err := s.loadCurrent(userID)
	if err != nil {
		return nil, err
	}
	return dataset.BuildProfile(ds, schema.Required.Columns()), nil
}

// Predict 对当前数据集发起预测。缺少必需列时不会调用预测服务。
// 调用前作废旧结果，调用失败时不保存任何结果。
func (s *PredictionService) Predict(ctx context.Context, userID uint) (*dto.PredictionResponse, error) {
	file, ds, _, err := s.loadCurrent(userID)
	if err != nil {
		return nil, err
	}

	report := schema.Validate(ds.Columns(), schema.Required)
	if !report.Predictable() {
		return nil, &NotPredictableError{Missing: report.Missing}
	}

	if err := s.runRepo.DeleteByDataFileID(file.ID); err != nil {
		return nil, fmt.Errorf("清除旧预测结果失败: %w", err)
	}

	if err := s.limiter.Acquire(ctx, slotKey); err != nil {
		if errors.Is(err, limiter.ErrLimitReached) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("获取并发槽位失败: %w", err)
	}
	defer s.limiter.Release(context.Background(), slotKey)

	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "data_file_id": file.ID, "rows": ds.RowCount()})

	start := time.Now()
	result, err := s.client.Predict(ctx, file.Filename, ds)
	elapsed := time.Since(start)
	metrics.ObservePrediction(outcomeOf(err), elapsed, len(result))
	if err != nil {
		log.WithError(err).WithField("elapsed", elapsed).Warn("预测请求失败")
		return nil, err
	}

	stats := summary.Summarize(result)
	run := &models.PredictionRun{
		RunID:          uuid.NewString(),
		UserID:         userID,
		DataFileID:     file.ID,
		Predictions:    models.PredictionValues(result),
		NumPredictions: len(result),
		Kind:           string(stats.Kind),
		DurationMs:     elapsed.Milliseconds(),
	}
	if err := s.runRepo.CreateForCurrentFile(run); err != nil {
		if errors.Is(err, repository.ErrDataFileReplaced) {
			log.Warn("预测期间数据集已被替换，丢弃预测结果")
			return nil, ErrDatasetReplaced
		}
		return nil, fmt.Errorf("保存预测结果失败: %w", err)
	}

	log.WithFields(logrus.Fields{"run_id": run.RunID, "kind": stats.Kind, "elapsed": elapsed}).Info("预测完成")
	return predictionResponse(file, ds, run, stats)
}

// Results 当前数据集的预测结果
func (s *PredictionService) Results(userID uint) (*dto.PredictionResponse, error) {
	file, ds, run, err := s.loadRun(userID)
	if err != nil {
		return nil, err
	}
	return predictionResponse(file, ds, run, summary.Summarize(run.Predictions.Result()))
}

// ExportCSV 导出CSV，每次请求重新生成
func (s *PredictionService) ExportCSV(userID uint) (*ExportFile, error) {
	_, ds, run, err := s.loadRun(userID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	content, err := export.BuildCSV(ds, run.Predictions.Result(), at)
	if err != nil {
		return nil, err
	}
	metrics.Exports.WithLabelValues("csv").Inc()
	return &ExportFile{
		Name:        export.FileName(at, "csv"),
		ContentType: "text/csv",
		Content:     content,
	}, nil
}

// ExportJSON 导出JSON，每次请求重新生成
func (s *PredictionService) ExportJSON(userID uint) (*ExportFile, error) {
	file, ds, run, err := s.loadRun(userID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	result := run.Predictions.Result()
	content, err := export.BuildJSON(ds, result, summary.Summarize(result), file.Filename, s.cfg.Export.ModelVersion, at)
	if err != nil {
		return nil, err
	}
	metrics.Exports.WithLabelValues("json").Inc()
	return &ExportFile{
		Name:        export.FileName(at, "json"),
		ContentType: "application/json",
		Content:     content,
	}, nil
}

// Health 预测服务健康状态，仅供展示
func (s *PredictionService) Health(ctx context.Context) predictor.HealthStatus {
	return s.client.Health(ctx)
}

func (s *PredictionService) loadCurrent(userID uint) (*models.DataFile, *dataset.Dataset, *dataset.IngestInfo, error) {
	file, err := s.fileRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNoDataset
		}
		return nil, nil, nil, fmt.Errorf("获取数据集失败: %w", err)
	}

	ds, info, err := dataset.Ingest(file.FileContent)
	if err != nil {
		return nil, nil, nil, err
	}
	return file, ds, info, nil
}

func (s *PredictionService) loadRun(userID uint) (*models.DataFile, *dataset.Dataset, *models.PredictionRun, error) {
	file, ds, _, err := s.loadCurrent(userID)
	if err != nil {
		return nil, nil, nil, err
	}

	run, err := s.runRepo.GetLatestByDataFileID(file.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNoResult
		}
		return nil, nil, nil, fmt.Errorf("获取预测结果失败: %w", err)
	}
	return file, ds, run, nil
}

func datasetResponse(file *models.DataFile, ds *dataset.Dataset, info *dataset.IngestInfo, report schema.Report) *dto.DatasetResponse {
	warnings := info.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return &dto.DatasetResponse{
		FileName:       file.Filename,
		FileSize:       file.FileSize,
		Encoding:       info.Encoding,
		Warnings:       warnings,
		RowCount:       ds.RowCount(),
		Columns:        ds.Columns(),
		MissingColumns: report.Missing,
		ExtraColumns:   report.Extra,
		Predictable:    report.Predictable(),
		Preview:        ds.Head(dto.PreviewRows),
		UploadedAt:     file.CreatedAt,
	}
}

func predictionResponse(file *models.DataFile, ds *dataset.Dataset, run *models.PredictionRun, stats *summary.Stats) (*dto.PredictionResponse, error) {
	result := run.Predictions.Result()
	if len(result) != ds.RowCount() {
		return nil, &predictor.ResultSizeMismatchError{Expected: ds.RowCount(), Got: len(result)}
	}

	columns := append(ds.Columns(), export.PredictionColumn)
	rows := make([][]string, ds.RowCount())
	for i := range rows {
		rows[i] = append(ds.Row(i), result[i].String())
	}

	return &dto.PredictionResponse{
		RunID:       run.RunID,
		FileName:    file.Filename,
		Columns:     columns,
		Rows:        rows,
		Predictions: result,
		Summary:     buildSummary(stats),
		DurationMs:  run.DurationMs,
		CreatedAt:   run.CreatedAt,
	}, nil
}

// buildSummary 把统计结果转成展示用的指标，不适用的指标为 "N/A"
func buildSummary(stats *summary.Stats) dto.SummaryResponse {
	resp := dto.SummaryResponse{
		Kind:             stats.Kind,
		TotalPredictions: stats.Total,
		Mean:             summary.NotApplicable,
		Min:              summary.NotApplicable,
		Max:              summary.NotApplicable,
		MostCommon:       summary.NotApplicable,
		UniqueValues:     stats.UniqueCount(),
		Frequencies:      stats.Frequencies,
	}
	if resp.Frequencies == nil {
		resp.Frequencies = []summary.Frequency{}
	}
	if mode, ok := stats.Mode(); ok {
		resp.MostCommon = mode
	}
	if n := stats.Numeric; n != nil {
		resp.Mean = formatFloat(n.Mean)
		resp.Min = formatFloat(n.Min)
		resp.Max = formatFloat(n.Max)
	}
	return resp
}

// formatFloat 统计值保留两位小数
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func outcomeOf(err error) string {
	var (
		connErr     *predictor.ConnectionError
		serviceErr  *predictor.ServiceError
		responseErr *predictor.MalformedResponseError
		sizeErr     *predictor.ResultSizeMismatchError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &connErr):
		return metrics.OutcomeConnection
	case errors.As(err, &serviceErr):
		return metrics.OutcomeService
	case errors.As(err, &responseErr):
		return metrics.OutcomeResponse
	case errors.As(err, &sizeErr):
		return metrics.OutcomeMismatch
	default:
		return metrics.OutcomeError
	}
}
