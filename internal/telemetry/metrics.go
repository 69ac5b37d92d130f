package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "workout-api"

// Metrics holds the counters recorded by the workout services.
// A nil *Metrics records nothing.
type Metrics struct {
	setsLogged        metric.Int64Counter
	sessionsStarted   metric.Int64Counter
	sessionsCompleted metric.Int64Counter
	recordsUpdated    metric.Int64Counter
	recordFailures    metric.Int64Counter
	recordsDropped    metric.Int64Counter
}

// NewMetrics creates the counters on the global meter provider, so it must
// run after Initialize.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}

	var err error
	if m.setsLogged, err = meter.Int64Counter("workout.sets_logged",
		metric.WithDescription("Sets persisted")); err != nil {
		return nil, err
	}
	if m.sessionsStarted, err = meter.Int64Counter("workout.sessions_started",
		metric.WithDescription("Sessions created, by kind")); err != nil {
		return nil, err
	}
	if m.sessionsCompleted, err = meter.Int64Counter("workout.sessions_completed",
		metric.WithDescription("Sessions closed, by trigger")); err != nil {
		return nil, err
	}
	if m.recordsUpdated, err = meter.Int64Counter("workout.personal_records_updated",
		metric.WithDescription("Personal records improved")); err != nil {
		return nil, err
	}
	if m.recordFailures, err = meter.Int64Counter("workout.personal_record_failures",
		metric.WithDescription("Personal record evaluations that failed")); err != nil {
		return nil, err
	}
	if m.recordsDropped, err = meter.Int64Counter("workout.personal_record_jobs_dropped",
		metric.WithDescription("Evaluations dropped because the queue was full")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) SetLogged(ctx context.Context) {
	if m == nil {
		return
	}
	m.setsLogged.Add(ctx, 1)
}

func (m *Metrics) SessionStarted(ctx context.Context, adHoc bool) {
	if m == nil {
		return
	}
	m.sessionsStarted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ad_hoc", adHoc)))
}

// SessionCompleted counts a closed session. trigger is "explicit" or "plan_finished".
func (m *Metrics) SessionCompleted(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	m.sessionsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}

func (m *Metrics) RecordUpdated(ctx context.Context) {
	if m == nil {
		return
	}
	m.recordsUpdated.Add(ctx, 1)
}

func (m *Metrics) RecordFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.recordFailures.Add(ctx, 1)
}

func (m *Metrics) RecordDropped(ctx context.Context) {
	if m == nil {
		return
	}
	m.recordsDropped.Add(ctx, 1)
}
