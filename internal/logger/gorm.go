package logger

import (
	"context"
	"errors"
	"time"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// GormLogger sends gorm's SQL logging to logrus. Statements are logged at
// debug, slow statements at warn and failures at error. Record-not-found is
// expected traffic and is not reported as a failure.
type GormLogger struct {
	entry         *logrus.Entry
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(log *logrus.Logger) *GormLogger {
	level := gormlogger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return &GormLogger{
		entry:         log.WithField("component", "gorm"),
		level:         level,
		slowThreshold: slowQueryThreshold,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.entry.WithContext(ctx).Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.entry.WithContext(ctx).Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.entry.WithContext(ctx).Errorf(msg, args...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := l.entry.WithContext(ctx).WithFields(logrus.Fields{
		"elapsed": elapsed.String(),
		"rows":    rows,
		"sql":     sql,
	})

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		entry.WithError(err).Error("query failed")
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		entry.Warn("slow query")
	case l.level >= gormlogger.Info:
		entry.Debug("query")
	}
}
