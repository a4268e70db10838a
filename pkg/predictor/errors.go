package predictor

import (
	"errors"
	"fmt"
)

// ConnectionError 传输层失败（无法连接、超时等）
type ConnectionError struct {
	Err     error
	Timeout bool
}

func (e *ConnectionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("预测服务请求超时: %v", e.Err)
	}
	return fmt.Sprintf("无法连接预测服务: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ServiceError 预测服务返回非200状态
type ServiceError struct {
	StatusCode int
	Detail     string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("预测服务返回错误: status=%d, detail=%s", e.StatusCode, e.Detail)
}

// MalformedResponseError 响应不是合法JSON或缺少必要字段
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "预测服务响应格式错误: " + e.Reason
}

// ResultSizeMismatchError 预测数量与数据行数不一致
type ResultSizeMismatchError struct {
	Expected int
	Got      int
}

func (e *ResultSizeMismatchError) Error() string {
	return fmt.Sprintf("预测数量不匹配: 数据集有%d行，收到%d条预测", e.Expected, e.Got)
}

// IsConnectionError 判断是否为可重试的连接错误
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
