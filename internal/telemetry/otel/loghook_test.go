package otel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureProcessor keeps every record emitted through the provider.
type captureProcessor struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (p *captureProcessor) OnEmit(ctx context.Context, rec *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec.Clone())
	return nil
}

func (p *captureProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }

func (p *captureProcessor) Shutdown(context.Context) error   { return nil }
func (p *captureProcessor) ForceFlush(context.Context) error { return nil }

func newHookedLogger(t *testing.T, minLevel logrus.Level) (*logrus.Logger, *captureProcessor) {
	t.Helper()
	capture := &captureProcessor{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(capture))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)
	logger.AddHook(NewLogHook(provider, minLevel))
	return logger, capture
}

func TestLogHook_EmitsRecord(t *testing.T) {
	logger, capture := newHookedLogger(t, logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"company_id": "acct-1",
		"status":     409,
		"took":       1500 * time.Millisecond,
		"ok":         false,
	}).WithError(errors.New("boom")).Warn("register failed")

	if len(capture.records) != 1 {
		t.Fatalf("records = %d, want 1", len(capture.records))
	}
	rec := capture.records[0]
	if got := rec.Body().AsString(); got != "register failed" {
		t.Errorf("body = %q", got)
	}
	if rec.Severity() != otellog.SeverityWarn {
		t.Errorf("severity = %v, want warn", rec.Severity())
	}
	attrs := map[string]otellog.Value{}
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	if attrs["company_id"].AsString() != "acct-1" {
		t.Errorf("company_id = %v", attrs["company_id"])
	}
	if attrs["status"].AsInt64() != 409 {
		t.Errorf("status = %v", attrs["status"])
	}
	if attrs["took"].AsString() != "1.5s" {
		t.Errorf("took = %v", attrs["took"])
	}
	if attrs["error"].AsString() != "boom" {
		t.Errorf("error = %v", attrs["error"])
	}
}

func TestLogHook_RespectsMinLevel(t *testing.T) {
	logger, capture := newHookedLogger(t, logrus.WarnLevel)
	logger.Info("too chatty")
	logger.Debug("way too chatty")
	logger.Error("kept")
	if len(capture.records) != 1 {
		t.Fatalf("records = %d, want 1", len(capture.records))
	}
}

func TestSeverity(t *testing.T) {
	testCases := []struct {
		level logrus.Level
		want  otellog.Severity
	}{
		{logrus.TraceLevel, otellog.SeverityTrace},
		{logrus.DebugLevel, otellog.SeverityDebug},
		{logrus.InfoLevel, otellog.SeverityInfo},
		{logrus.ErrorLevel, otellog.SeverityError},
		{logrus.PanicLevel, otellog.SeverityFatal4},
	}
	for _, tc := range testCases {
		if got := severity(tc.level); got != tc.want {
			t.Errorf("severity(%v) = %v, want %v", tc.level, got, tc.want)
		}
	}
}
