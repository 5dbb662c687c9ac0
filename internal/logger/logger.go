package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"liarbar/internal/config"
)

const timeFormat = "2006/01/02 15:04:05.000"

// New builds the process logger. Output always goes to stderr; when
// cfg.File is set it is also written to a rotating file.
func New(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(cfg.JSON), zapcore.Lock(os.Stderr), level),
	}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(encoder(true), zapcore.AddSync(rotating(cfg)), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func encoder(json bool) zapcore.Encoder {
	if json {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(encoderCfg)
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = customTimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderCfg.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(encoderCfg)
}

func rotating(cfg config.Log) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
		Compress:   cfg.Compress,
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(timeFormat) + "]")
}
