package monitoring

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ObservabilityHook receives engine events. Implementations must be safe for
// concurrent use.
type ObservabilityHook interface {
	OnProcessStart(ctx context.Context, operation string, metadata map[string]any)
	// OnProcessComplete runs once per started operation; err is nil on success.
	OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any)
	// OnError runs before OnProcessComplete for a failed operation.
	OnError(ctx context.Context, operation string, err error, metadata map[string]any)
	// OnUnknownKey reports an input key that matched no field of record.
	OnUnknownKey(ctx context.Context, record string, key string)
}

// Series reported by MetricsHook.
const (
	MetricStarted     = "serdex_process_started_total"
	MetricSucceeded   = "serdex_process_succeeded_total"
	MetricFailed      = "serdex_process_failed_total"
	MetricErrors      = "serdex_errors_total"
	MetricUnknownKeys = "serdex_unknown_keys_total"
	MetricDuration    = "serdex_process_duration_seconds"
)

// NopHook ignores every event.
type NopHook struct{}

func (NopHook) OnProcessStart(context.Context, string, map[string]any)                          {}
func (NopHook) OnProcessComplete(context.Context, string, time.Duration, error, map[string]any) {}
func (NopHook) OnError(context.Context, string, error, map[string]any)                          {}
func (NopHook) OnUnknownKey(context.Context, string, string)                                    {}

// LogHook writes events to a StructuredLogger. Only failures are logged above
// debug level.
type LogHook struct {
	logger *StructuredLogger
}

// NewLogHook returns a hook logging to logger, or to a logger configured from
// the environment when logger is nil.
func NewLogHook(logger *StructuredLogger) *LogHook {
	if logger == nil {
		logger = NewLoggerFromEnv("engine")
	}
	return &LogHook{logger: logger}
}

func (h *LogHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]any) {
	h.logger.WithContext(ctx).Debug(operation+" started", attrs(metadata)...)
}

func (h *LogHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
	args := append(attrs(metadata), "elapsed", duration, "ok", err == nil)
	h.logger.WithContext(ctx).Debug(operation+" finished", args...)
}

func (h *LogHook) OnError(ctx context.Context, operation string, err error, metadata map[string]any) {
	args := append(attrs(metadata), "error", err, "error_type", fmt.Sprintf("%T", err))
	h.logger.WithContext(ctx).Error(operation+" failed", args...)
}

func (h *LogHook) OnUnknownKey(ctx context.Context, record string, key string) {
	h.logger.WithContext(ctx).Debug("skipped unknown key", "record", record, "key", key)
}

// attrs flattens metadata into slog key/value pairs in key order.
func attrs(metadata map[string]any) []any {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, 2*len(keys)+4)
	for _, k := range keys {
		out = append(out, k, metadata[k])
	}
	return out
}

// MetricsHook counts operations, errors and unknown keys. Operations are
// labelled with their name and, when the metadata carries one, the format.
type MetricsHook struct {
	collector MetricsCollector
}

func NewMetricsHook(collector MetricsCollector) *MetricsHook {
	return &MetricsHook{collector: collector}
}

func (h *MetricsHook) OnProcessStart(_ context.Context, operation string, metadata map[string]any) {
	h.collector.Inc(MetricStarted, operationLabels(operation, metadata))
}

func (h *MetricsHook) OnProcessComplete(_ context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
	labels := operationLabels(operation, metadata)
	name := MetricSucceeded
	labels["status"] = "success"
	if err != nil {
		name = MetricFailed
		labels["status"] = "error"
	}
	h.collector.Inc(name, labels)
	h.collector.Observe(MetricDuration, duration, labels)
}

func (h *MetricsHook) OnError(_ context.Context, operation string, err error, _ map[string]any) {
	h.collector.Inc(MetricErrors, Labels{"operation": operation, "error": fmt.Sprintf("%T", err)})
}

func (h *MetricsHook) OnUnknownKey(_ context.Context, record string, _ string) {
	h.collector.Inc(MetricUnknownKeys, Labels{"record": record})
}

func operationLabels(operation string, metadata map[string]any) Labels {
	labels := Labels{"operation": operation}
	if format, ok := metadata["format"].(string); ok && format != "" {
		labels["format"] = format
	}
	return labels
}

// MultiHook forwards every event to each of its hooks in order.
type MultiHook []ObservabilityHook

func (m MultiHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]any) {
	for _, h := range m {
		h.OnProcessStart(ctx, operation, metadata)
	}
}

func (m MultiHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
	for _, h := range m {
		h.OnProcessComplete(ctx, operation, duration, err, metadata)
	}
}

func (m MultiHook) OnError(ctx context.Context, operation string, err error, metadata map[string]any) {
	for _, h := range m {
		h.OnError(ctx, operation, err, metadata)
	}
}

func (m MultiHook) OnUnknownKey(ctx context.Context, record string, key string) {
	for _, h := range m {
		h.OnUnknownKey(ctx, record, key)
	}
}
