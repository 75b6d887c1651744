package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogger_Info_WithTraceID(t *testing.T) {
	// 劫持日志输出到内存 Buffer
	buffer := &bytes.Buffer{}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "msg"

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buffer),
		zap.InfoLevel,
	)

	// 直接替换包级变量 Log (模拟 Init)
	Log = zap.New(core)

	traceVal := "trace-deposit-001"
	ctx := context.WithValue(context.Background(), TraceIdKey, traceVal)

	Info(ctx, "存入池子", zap.String("user", "U1"), zap.Float64("amount", 0.4))

	var logEntry map[string]interface{}
	err := json.Unmarshal(buffer.Bytes(), &logEntry)
	assert.NoError(t, err, "日志输出必须是合法的 JSON")

	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, "存入池子", logEntry["msg"])
	assert.Equal(t, "U1", logEntry["user"])
	assert.Equal(t, 0.4, logEntry["amount"])

	// 核心验证：TraceID 自动注入
	assert.Equal(t, traceVal, logEntry["trace_id"], "TraceID 未能自动注入到日志中")
}

func TestLogger_Error_NoTraceID(t *testing.T) {
	buffer := &bytes.Buffer{}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(buffer),
		zap.InfoLevel,
	)
	Log = zap.New(core)

	// 空 Context，不带 TraceID
	Error(context.Background(), "数据库连接失败", zap.String("db", "mysql"))

	var logEntry map[string]interface{}
	_ = json.Unmarshal(buffer.Bytes(), &logEntry)

	_, exists := logEntry["trace_id"]
	assert.False(t, exists, "没有 TraceID 的 Context 不应该输出 trace_id 字段")
	assert.Equal(t, "error", logEntry["level"])
}
