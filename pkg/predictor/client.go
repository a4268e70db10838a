package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"predict-go/internal/dataset"

	"github.com/sirupsen/logrus"
)

const (
	predictPath = "/predict"
	healthPath  = "/health"

	healthBodyLimit         = 1 << 20
	defaultMaxResponseBytes = 64 << 20
)

// Options 客户端配置，MaxResponseBytes 为预测响应体上限，默认64MB
type Options struct {
	BaseURL          string
	PredictTimeout   time.Duration
	HealthTimeout    time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	MaxResponseBytes int64
	HTTPClient       *http.Client
	Logger           logrus.FieldLogger
}

// Client 预测服务客户端
type Client struct {
	client         *http.Client
	baseURL        string
	predictTimeout time.Duration
	healthTimeout  time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	maxResponse    int64
	logger         logrus.FieldLogger
}

// HealthStatus 健康检查结果，仅供展示
type HealthStatus struct {
	Reachable   bool   `json:"reachable"`
	ModelLoaded bool   `json:"model_loaded"`
	StatusCode  int    `json:"status_code,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// NewClient 创建预测服务客户端
func NewClient(opts Options) *Client {
	c := &Client{
		client:         opts.HTTPClient,
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		predictTimeout: opts.PredictTimeout,
		healthTimeout:  opts.HealthTimeout,
		maxRetries:     opts.MaxRetries,
		retryBackoff:   opts.RetryBackoff,
		maxResponse:    opts.MaxResponseBytes,
		logger:         opts.Logger,
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.predictTimeout <= 0 {
		c.predictTimeout = 30 * time.Second
	}
	if c.healthTimeout <= 0 {
		c.healthTimeout = 5 * time.Second
	}
	if c.maxResponse <= 0 {
		c.maxResponse = defaultMaxResponseBytes
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	return c
}

// Health 探测后端状态。失败时返回不可达状态，不返回错误。
func (c *Client) Health(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return HealthStatus{Detail: err.Error()}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("预测服务健康检查失败")
		return HealthStatus{Detail: err.Error()}
	}
	defer resp.Body.Close()

	status := HealthStatus{Reachable: true, StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, healthBodyLimit))
	if err != nil {
		c.logger.WithError(err).Warn("读取健康检查响应失败")
		status.Detail = "读取健康检查响应失败: " + err.Error()
		return status
	}
	if resp.StatusCode != http.StatusOK {
		status.Detail = extractDetail(body)
		return status
	}

	var payload struct {
		ModelLoaded bool `json:"model_loaded"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		status.Detail = "健康检查响应不是合法JSON"
		return status
	}
	status.ModelLoaded = payload.ModelLoaded
	return status
}

// Predict 上传数据集并返回预测结果。只有连接错误会按配置重试，
// 返回的结果数量一定等于数据集行数。
func (c *Client) Predict(ctx context.Context, fileName string, ds *dataset.Dataset) (Result, error) {
	payload, err := ds.EncodeCSV()
	if err != nil {
		return nil, fmt.Errorf("序列化数据集失败: %w", err)
	}

	body, contentType, err := buildMultipart(fileName, payload)
	if err != nil {
		return nil, fmt.Errorf("构建上传请求失败: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.retryBackoff << (attempt - 1)
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"wait":    wait,
			}).Warn("预测服务连接失败，准备重试")

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, &ConnectionError{Err: ctx.Err(), Timeout: errors.Is(ctx.Err(), context.DeadlineExceeded)}
			}
		}

		result, err := c.doPredict(ctx, body, contentType)
		if err == nil {
			if len(result) != ds.RowCount() {
				return nil, &ResultSizeMismatchError{Expected: ds.RowCount(), Got: len(result)}
			}
			return result, nil
		}

		if !IsConnectionError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *Client) doPredict(ctx context.Context, body []byte, contentType string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.predictTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err, Timeout: isTimeout(err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, &ConnectionError{Err: err, Timeout: isTimeout(err)}
	}
	oversized := int64(len(respBody)) > c.maxResponse
	if oversized {
		respBody = respBody[:c.maxResponse]
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Detail: extractDetail(respBody)}
	}
	if oversized {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("响应体超过 %d 字节", c.maxResponse)}
	}

	var parsed struct {
		Predictions    *[]json.RawMessage `json:"predictions"`
		NumPredictions *int               `json:"num_predictions"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &MalformedResponseError{Reason: err.Error()}
	}
	if parsed.Predictions == nil {
		return nil, &MalformedResponseError{Reason: "缺少 predictions 字段"}
	}
	if parsed.NumPredictions == nil {
		return nil, &MalformedResponseError{Reason: "缺少 num_predictions 字段"}
	}
	if *parsed.NumPredictions != len(*parsed.Predictions) {
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("num_predictions=%d 与 predictions 长度 %d 不一致", *parsed.NumPredictions, len(*parsed.Predictions)),
		}
	}

	result, err := parseResult(*parsed.Predictions)
	if err != nil {
		return nil, &MalformedResponseError{Reason: err.Error()}
	}
	return result, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildMultipart 构造单文件表单，字段名 file，类型 text/csv
func buildMultipart(fileName string, payload []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(fileName)))
	h.Set("Content-Type", "text/csv")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// extractDetail JSON响应取 detail 字段，否则使用原始文本
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 && string(payload.Detail) != "null" {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		return string(payload.Detail)
	}
	return strings.TrimSpace(string(body))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
