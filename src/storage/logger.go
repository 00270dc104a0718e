package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel 定义日志级别类型
type LogLevel int

// 日志级别常量定义
const (
	DEBUG   LogLevel = iota // 调试信息
	INFO                    // 普通信息
	WARNING                 // 警告信息
	ERROR                   // 错误信息
	FATAL                   // 致命错误
)

// Logger 日志记录器，底层为zap，同时写入标准错误和日志文件
type Logger struct {
	zl    *zap.Logger
	runID string
}

// NewLogger 创建新的日志记录器
// 参数:
//
//	filename: 日志文件路径，为空时只输出到标准错误
//	verbose: 是否输出DEBUG级别
func NewLogger(filename string, verbose bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.OutputPaths = []string{"stderr"}
	if filename != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, filename)
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	runID := uuid.NewString()
	return &Logger{
		zl:    zl.With(zap.String("run_id", runID)),
		runID: runID,
	}, nil
}

// NewNopLogger 不输出任何内容，测试时使用
func NewNopLogger() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// RunID 本次运行的编号，每条日志都带有同样的 run_id 字段
func (l *Logger) RunID() string { return l.runID }

// Close 刷新缓冲
func (l *Logger) Close() error {
	if l.zl == nil {
		return nil
	}
	err := l.zl.Sync()
	// stderr 在部分平台上不支持 fsync
	if err != nil && strings.Contains(err.Error(), "/dev/stderr") {
		return nil
	}
	return err
}

// Log 记录日志方法
// 参数:
//
//	level: 日志级别
//	message: 日志消息内容
//	fields: 结构化字段
func (l *Logger) Log(level LogLevel, message string, fields ...zap.Field) {
	switch level {
	case DEBUG:
		l.zl.Debug(message, fields...)
	case INFO:
		l.zl.Info(message, fields...)
	case WARNING:
		l.zl.Warn(message, fields...)
	case ERROR:
		l.zl.Error(message, fields...)
	case FATAL:
		// 不调用zap的Fatal，退出由调用方决定
		l.zl.Error(message, append(fields, zap.Bool("fatal", true))...)
	}
}

// RotateIfLarge 启动时检查日志文件大小，超过maxSize则改名归档
func RotateIfLarge(filename, maxSize string) (bool, error) {
	limit := eval(maxSize)
	if filename == "" || limit <= 0 {
		return false, nil
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.Size() <= limit {
		return false, nil
	}

	ext := ".log"
	base := strings.TrimSuffix(filename, ext)
	archived := fmt.Sprintf("%s.%s%s", base, time.Now().Format("20060102150405"), ext)
	if err := os.Rename(filename, archived); err != nil {
		return false, fmt.Errorf("日志轮转失败: %w", err)
	}
	return true, nil
}

// String 实现LogLevel的String方法
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// eval 计算形如 "10 * 1024 * 1024" 的乘法表达式，非法输入返回0
func eval(expr string) int64 {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0
	}
	var result int64 = 1
	for _, part := range strings.Split(expr, "*") {
		num, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0
		}
		result *= num
	}
	return result
}

// 以下是快捷日志方法
func (l *Logger) Debug(msg string, fields ...zap.Field)   { l.Log(DEBUG, msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)    { l.Log(INFO, msg, fields...) }
func (l *Logger) Warning(msg string, fields ...zap.Field) { l.Log(WARNING, msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field)   { l.Log(ERROR, msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field)   { l.Log(FATAL, msg, fields...) }
