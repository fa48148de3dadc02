package scheduler

import (
	"fmt"
	"time"

	"github.com/dhima/audit-store/internal/logging"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ParseSchedule parses a standard five-field cron expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return schedule, nil
}

// NextRun returns the next activation of spec after from, in UTC.
func NextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(from.UTC()).UTC(), nil
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keyValueFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keyValueFields(keysAndValues), zap.Error(err))...)
}

func keyValueFields(kv []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
