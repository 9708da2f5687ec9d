package cron

import (
	"go.uber.org/zap"

	"github.com/customeros/mailsorter/internal/logger"
)

// cronLogger adapts the app logger to cron's logr-style interface.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func newCronLogger(log logger.Logger) cronLogger {
	return cronLogger{sugar: log.Logger().Sugar().With("component", "cron")}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
