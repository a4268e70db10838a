package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"predict-go/internal/dataset"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset(t *testing.T, rows int) *dataset.Dataset {
	t.Helper()
	data := make([][]string, rows)
	for i := range data {
		data[i] = []string{"basic", "30"}
	}
	ds, err := dataset.New([]string{"trf", "age"}, data)
	require.NoError(t, err)
	return ds
}

func newTestClient(url string, retries int) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(Options{
		BaseURL:        url,
		PredictTimeout: 2 * time.Second,
		HealthTimeout:  time.Second,
		MaxRetries:     retries,
		RetryBackoff:   time.Millisecond,
		Logger:         logger,
	})
}

func TestPredict_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "upload.csv", header.Filename)
		assert.Equal(t, "text/csv", header.Header.Get("Content-Type"))

		content, _ := io.ReadAll(file)
		assert.Equal(t, "trf,age\nbasic,30\nbasic,30\nbasic,30\n", string(content))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":["x","y","x"],"num_predictions":3}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL, 0).Predict(context.Background(), "upload.csv", testDataset(t, 3))
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y", "x"}, result.Strings())
	assert.False(t, result[0].IsNumber())
}

func TestPredict_NumericKeepsJSONText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[1, 0.25, 3.0],"num_predictions":3}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL, 0).Predict(context.Background(), "f.csv", testDataset(t, 3))
	require.NoError(t, err)

	assert.True(t, result[0].IsNumber())
	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 0.25, 3.0]`, string(out))
	assert.Equal(t, "3.0", result[2].String())
}

func TestPredict_ServiceError(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"json detail", `{"detail":"Missing column: region"}`, "Missing column: region"},
		{"structured detail", `{"detail":[{"loc":["file"]}]}`, `[{"loc":["file"]}]`},
		{"plain text", "Internal Server Error\n", "Internal Server Error"},
		{"json without detail", `{"error":"x"}`, `{"error":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, 0).Predict(context.Background(), "f.csv", testDataset(t, 1))

			var svcErr *ServiceError
			require.True(t, errors.As(err, &svcErr), "got %v", err)
			assert.Equal(t, http.StatusUnprocessableEntity, svcErr.StatusCode)
			assert.Equal(t, tt.detail, svcErr.Detail)
		})
	}
}

func TestPredict_MalformedResponse(t *testing.T) {
	bodies := map[string]string{
		"not json":            `<html>oops</html>`,
		"missing predictions": `{"num_predictions":1}`,
		"missing count":       `{"predictions":["a"]}`,
		"predictions object":  `{"predictions":{"a":1},"num_predictions":1}`,
		"count disagrees":     `{"predictions":["a"],"num_predictions":2}`,
		"null value":          `{"predictions":[null],"num_predictions":1}`,
		"mixed types":         `{"predictions":["a",1],"num_predictions":2}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			rows := 1
			if name == "mixed types" {
				rows = 2
			}
			_, err := newTestClient(server.URL, 0).Predict(context.Background(), "f.csv", testDataset(t, rows))

			var malformed *MalformedResponseError
			assert.True(t, errors.As(err, &malformed), "got %v", err)
		})
	}
}

func TestPredict_SizeMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":["a","b"],"num_predictions":2}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL, 0).Predict(context.Background(), "f.csv", testDataset(t, 3))
	assert.Nil(t, result)

	var mismatch *ResultSizeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 3, mismatch.Expected)
	assert.Equal(t, 2, mismatch.Got)
}

func TestPredict_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, 0).Predict(context.Background(), "f.csv", testDataset(t, 1))

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "got %v", err)
	assert.False(t, connErr.Timeout)
}

func TestPredict_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(server.URL, 0)
	client.predictTimeout = 50 * time.Millisecond

	_, err := client.Predict(context.Background(), "f.csv", testDataset(t, 1))

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "got %v", err)
	assert.True(t, connErr.Timeout)
}

func TestPredict_RetriesOnlyConnectionErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			// 断开连接，模拟瞬时网络故障
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		_, _ = w.Write([]byte(`{"predictions":[1],"num_predictions":1}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL, 2).Predict(context.Background(), "f.csv", testDataset(t, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, result.Strings())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	serviceFail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer serviceFail.Close()

	_, err = newTestClient(serviceFail.URL, 3).Predict(context.Background(), "f.csv", testDataset(t, 1))
	var svcErr *ServiceError
	assert.True(t, errors.As(err, &svcErr))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","model_loaded":true}`))
	}))
	defer server.Close()

	status := newTestClient(server.URL+"/", 0).Health(context.Background())
	assert.True(t, status.Reachable)
	assert.True(t, status.ModelLoaded)
	assert.Equal(t, http.StatusOK, status.StatusCode)
}

func TestHealth_Unhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"model not loaded"}`))
	}))
	defer server.Close()

	status := newTestClient(server.URL, 0).Health(context.Background())
	assert.True(t, status.Reachable)
	assert.False(t, status.ModelLoaded)
	assert.Equal(t, "model not loaded", status.Detail)
}

func TestHealth_BodyReadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		// 声明的长度大于实际写出的内容，读取时会遇到意外EOF
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 100\r\n\r\n{\"model")
		_ = buf.Flush()
		conn.Close()
	}))
	defer server.Close()

	status := newTestClient(server.URL, 0).Health(context.Background())
	assert.True(t, status.Reachable)
	assert.False(t, status.ModelLoaded)
	assert.Equal(t, http.StatusOK, status.StatusCode)
	assert.Contains(t, status.Detail, "读取健康检查响应失败")
}

func TestPredict_ResponseSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":["aaaaaaaaaaaaaaaaaaaa"],"num_predictions":1}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	client.maxResponse = 32
	_, err := client.Predict(context.Background(), "f.csv", testDataset(t, 1))
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "32")

	result, err := newTestClient(server.URL, 0).Predict(context.Background(), "f.csv", testDataset(t, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaaaaaaaaaaaaaaaaaa"}, result.Strings())
}

func TestPredict_OversizedErrorBodyKeepsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("e", 200)))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	client.maxResponse = 32
	_, err := client.Predict(context.Background(), "f.csv", testDataset(t, 1))
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
	assert.Equal(t, strings.Repeat("e", 32), svcErr.Detail)
}

func TestHealth_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	status := newTestClient(url, 0).Health(context.Background())
	assert.False(t, status.Reachable)
	assert.NotEmpty(t, status.Detail)
}

func TestValueUnmarshal(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &r))
	assert.Equal(t, []string{"a", "b"}, r.Strings())

	require.NoError(t, json.Unmarshal([]byte(`[1e3, -2]`), &r))
	assert.True(t, r[0].IsNumber())
	assert.Equal(t, "1e3", r[0].String())

	assert.Error(t, json.Unmarshal([]byte(`[true]`), &r))
}
