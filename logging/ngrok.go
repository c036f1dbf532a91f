package logging

import (
	"context"
	"sort"

	log "github.com/inconshreveable/log15/v3"
	ngroklog "golang.ngrok.com/ngrok/log"
)

type ngrokAdapter struct {
	logger log.Logger
}

// NgrokAdapter forwards records from the ngrok agent to logger. Trace
// records are logged at debug.
func NgrokAdapter(logger log.Logger) ngroklog.Logger {
	return &ngrokAdapter{logger: logger}
}

func (a *ngrokAdapter) Log(_ context.Context, level ngroklog.LogLevel, msg string, data map[string]interface{}) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		ctx = append(ctx, k, data[k])
	}

	switch level {
	case ngroklog.LogLevelNone:
	case ngroklog.LogLevelError:
		a.logger.Error(msg, ctx...)
	case ngroklog.LogLevelWarn:
		a.logger.Warn(msg, ctx...)
	case ngroklog.LogLevelInfo:
		a.logger.Info(msg, ctx...)
	default:
		a.logger.Debug(msg, ctx...)
	}
}
