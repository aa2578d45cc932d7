package logger

import (
    "os"

    "go.uber.org/fx"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

func New() (*zap.SugaredLogger, error) {
    cfg := zap.NewProductionConfig()
    cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    cfg.EncoderConfig.TimeKey = "time"
    if lvl := os.Getenv("APP_LOG_LEVEL"); lvl != "" {
        if parsed, err := zapcore.ParseLevel(lvl); err == nil {
            cfg.Level = zap.NewAtomicLevelAt(parsed)
        }
    }
    l, err := cfg.Build()
    if err != nil {
        return nil, err
    }
    return l.Sugar(), nil
}

var Module = fx.Options(
    fx.Provide(New),
)
