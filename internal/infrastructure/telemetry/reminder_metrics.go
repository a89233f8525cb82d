package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	notificationapp "github.com/wimotos/backend/internal/application/notification"
	"github.com/wimotos/backend/internal/domain/shared"
)

const meterName = "wimotos-backend/reminders"

var (
	attrKind    = attribute.Key("kind")
	attrOutcome = attribute.Key("outcome")
	attrErrKind = attribute.Key("error_kind")
)

// ReminderMetrics counts WhatsApp deliveries per kind and outcome, and times cycles
type ReminderMetrics struct {
	deliveries    metric.Int64Counter
	cycleDuration metric.Float64Histogram
	cycleFailures metric.Int64Counter
}

// NewReminderMetrics registers the instruments on meter; nil uses the global provider
func NewReminderMetrics(meter metric.Meter) (*ReminderMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}
	deliveries, err := meter.Int64Counter("wimotos.reminder.deliveries",
		metric.WithDescription("WhatsApp delivery attempts"),
		metric.WithUnit("{message}"))
	if err != nil {
		return nil, fmt.Errorf("create deliveries counter: %w", err)
	}
	duration, err := meter.Float64Histogram("wimotos.reminder.cycle.duration",
		metric.WithDescription("Reminder cycle wall time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120))
	if err != nil {
		return nil, fmt.Errorf("create cycle histogram: %w", err)
	}
	failures, err := meter.Int64Counter("wimotos.reminder.cycle.failures",
		metric.WithDescription("Reminder cycles that returned an error or panicked"))
	if err != nil {
		return nil, fmt.Errorf("create cycle failures counter: %w", err)
	}
	return &ReminderMetrics{deliveries: deliveries, cycleDuration: duration, cycleFailures: failures}, nil
}

// ObserveDelivery implements notificationapp.DeliveryObserver
func (m *ReminderMetrics) ObserveDelivery(ctx context.Context, kind string, err error) {
	attrs := []attribute.KeyValue{attrKind.String(kind), attrOutcome.String("sent")}
	if err != nil {
		attrs[1] = attrOutcome.String("failed")
		if k := shared.KindOf(err); k != "" {
			attrs = append(attrs, attrErrKind.String(string(k)))
		}
	}
	m.deliveries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// ObserveCycle records one scheduler iteration
func (m *ReminderMetrics) ObserveCycle(ctx context.Context, elapsed time.Duration, err error) {
	m.cycleDuration.Record(ctx, elapsed.Seconds())
	if err != nil {
		m.cycleFailures.Add(ctx, 1)
	}
}

var _ notificationapp.DeliveryObserver = (*ReminderMetrics)(nil)
