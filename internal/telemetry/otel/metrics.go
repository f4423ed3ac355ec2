package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "company-registration/backend/internal/company"

// WorkflowMetrics counts registration workflow operations by outcome and OTP sweeps.
type WorkflowMetrics struct {
	operations metric.Int64Counter
	swept      metric.Int64Counter
}

// NewWorkflowMetrics creates the instruments on mp.
func NewWorkflowMetrics(mp metric.MeterProvider) (*WorkflowMetrics, error) {
	meter := mp.Meter(meterName)
	ops, err := meter.Int64Counter("company.workflow.operations",
		metric.WithDescription("Registration workflow operations by operation and outcome"))
	if err != nil {
		return nil, err
	}
	swept, err := meter.Int64Counter("company.otp.swept",
		metric.WithDescription("Expired OTP entries evicted by the sweeper"))
	if err != nil {
		return nil, err
	}
	return &WorkflowMetrics{operations: ops, swept: swept}, nil
}

// Observe records one operation with its outcome ("ok" or an error class).
func (m *WorkflowMetrics) Observe(ctx context.Context, operation, outcome string) {
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordSwept adds n evicted OTP entries.
func (m *WorkflowMetrics) RecordSwept(ctx context.Context, n int) {
	if n > 0 {
		m.swept.Add(ctx, int64(n))
	}
}
