package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
)

// CronLogger routes cron's own messages to l. Cron's chatty info lines go out
// at debug level.
func CronLogger(l logger.Logger) cron.Logger {
	if l == nil {
		l = logger.Nop()
	}
	return cronLogger{log: l}
}

type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(context.Background(), msg, cronFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error(context.Background(), msg, append(cronFields(keysAndValues), logger.Error(err))...)
}

func cronFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			fields = append(fields, logger.Any("extra", kv[i]))
			break
		}
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
