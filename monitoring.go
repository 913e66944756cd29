package serdex

import (
	"sync/atomic"

	"github.com/hengadev/serdex/internal/monitoring"
)

// Observability types
type (
	ObservabilityHook = monitoring.ObservabilityHook
	MetricsCollector  = monitoring.MetricsCollector
	StructuredLogger  = monitoring.StructuredLogger
	LoggerConfig      = monitoring.LoggerConfig
	LogLevel          = monitoring.LogLevel
	LogFormat         = monitoring.LogFormat
	MetricLabels      = monitoring.Labels
)

const (
	LogLevelDebug = monitoring.LevelDebug
	LogLevelInfo  = monitoring.LevelInfo
	LogLevelWarn  = monitoring.LevelWarn
	LogLevelError = monitoring.LevelError

	LogFormatJSON    = monitoring.FormatJSON
	LogFormatText    = monitoring.FormatText
	LogFormatConsole = monitoring.FormatConsole
)

type hookHolder struct {
	hook ObservabilityHook
}

var defaultHook atomic.Pointer[hookHolder]

func init() {
	defaultHook.Store(&hookHolder{hook: monitoring.NopHook{}})
}

// DefaultObservabilityHook returns the hook used by calls without WithObservability.
func DefaultObservabilityHook() ObservabilityHook {
	return defaultHook.Load().hook
}

// SetDefaultObservabilityHook replaces the default hook. nil restores the no-op hook.
func SetDefaultObservabilityHook(hook ObservabilityHook) {
	if hook == nil {
		hook = monitoring.NopHook{}
	}
	defaultHook.Store(&hookHolder{hook: hook})
}

func NewStructuredLogger(cfg LoggerConfig) *StructuredLogger {
	return monitoring.NewStructuredLogger(cfg)
}

// NewLoggingHook logs every operation at debug level and failures at error
// level. A nil logger reads its level and format from SERDEX_LOG_LEVEL and
// SERDEX_LOG_FORMAT.
func NewLoggingHook(logger *StructuredLogger) ObservabilityHook {
	return monitoring.NewLogHook(logger)
}

// NewMetricsHook counts operations, errors and unknown keys in c.
func NewMetricsHook(c MetricsCollector) ObservabilityHook {
	return monitoring.NewMetricsHook(c)
}

// NewCompositeHook fans events out to every non-nil hook, in order.
func NewCompositeHook(hooks ...ObservabilityHook) ObservabilityHook {
	multi := make(monitoring.MultiHook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			multi = append(multi, h)
		}
	}
	return multi
}

// NewPrometheusCollector records metrics into a VictoriaMetrics set that
// can be written out in Prometheus text format.
func NewPrometheusCollector() *monitoring.PrometheusCollector {
	return monitoring.NewPrometheusCollector()
}
