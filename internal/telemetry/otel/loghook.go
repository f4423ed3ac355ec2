package otel

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	otellog "go.opentelemetry.io/otel/log"
)

const loggerName = "company-registration/backend"

// LogHook forwards logrus entries to an OTel Logger as log records.
type LogHook struct {
	logger otellog.Logger
	levels []logrus.Level
}

// NewLogHook returns a hook emitting entries at minLevel or more severe through provider.
func NewLogHook(provider otellog.LoggerProvider, minLevel logrus.Level) *LogHook {
	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= minLevel {
			levels = append(levels, l)
		}
	}
	return &LogHook{logger: provider.Logger(loggerName), levels: levels}
}

// Levels implements logrus.Hook.
func (h *LogHook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook.
func (h *LogHook) Fire(e *logrus.Entry) error {
	ctx := e.Context
	if ctx == nil {
		ctx = context.Background()
	}
	rec := otellog.Record{}
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	rec.SetTimestamp(ts)
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(severity(e.Level))
	rec.SetSeverityText(e.Level.String())
	rec.SetBody(otellog.StringValue(e.Message))
	for k, v := range e.Data {
		rec.AddAttributes(keyValue(k, v))
	}
	h.logger.Emit(ctx, rec)
	return nil
}

func severity(l logrus.Level) otellog.Severity {
	switch l {
	case logrus.TraceLevel:
		return otellog.SeverityTrace
	case logrus.DebugLevel:
		return otellog.SeverityDebug
	case logrus.InfoLevel:
		return otellog.SeverityInfo
	case logrus.WarnLevel:
		return otellog.SeverityWarn
	case logrus.ErrorLevel:
		return otellog.SeverityError
	case logrus.FatalLevel:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityFatal4
	}
}

func keyValue(k string, v interface{}) otellog.KeyValue {
	switch val := v.(type) {
	case string:
		return otellog.String(k, val)
	case bool:
		return otellog.Bool(k, val)
	case int:
		return otellog.Int(k, val)
	case int64:
		return otellog.Int64(k, val)
	case float64:
		return otellog.Float64(k, val)
	case time.Duration:
		return otellog.String(k, val.String())
	case error:
		return otellog.String(k, val.Error())
	default:
		return otellog.String(k, fmt.Sprint(val))
	}
}
