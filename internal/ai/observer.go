package ai

import "go.uber.org/zap"

// CallEvent records metadata about a single completion call.
type CallEvent struct {
	Provider  Provider
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about completion calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a zap logger.
type LogObserver struct {
	log *zap.Logger
}

func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log.Named("ai")}
}

func (o *LogObserver) OnCallComplete(e CallEvent) {
	fields := []zap.Field{
		zap.String("provider", string(e.Provider)),
		zap.String("model", e.Model),
		zap.Int64("latency_ms", e.LatencyMs),
	}
	if e.Success {
		o.log.Info("completion call", fields...)
		return
	}
	o.log.Warn("completion call failed", append(fields, zap.String("error_code", e.ErrorCode))...)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
