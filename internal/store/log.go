package store

import (
	"context"
	"time"

	"gorm.io/gorm/logger"
)

// quietLogger silences gorm's own output; the store logs through slog.
type quietLogger struct{}

func (l *quietLogger) LogMode(logger.LogLevel) logger.Interface             { return l }
func (l *quietLogger) Info(ctx context.Context, s string, v ...interface{}) {}
func (l *quietLogger) Warn(ctx context.Context, s string, v ...interface{}) {}
func (l *quietLogger) Error(ctx context.Context, s string, v ...interface{}) {}
func (l *quietLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
}
