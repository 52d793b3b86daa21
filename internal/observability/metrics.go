package observability

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelglobal "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const meterName = "accelerator"

var (
	AttrOutcome = attribute.Key("outcome")
	AttrKind    = attribute.Key("kind")
	AttrStatus  = attribute.Key("status")
)

var (
	initMetricsOnce     sync.Once
	joinRequestsCounter metric.Int64Counter
	responsesCounter    metric.Int64Counter
	evaluationsCounter  metric.Int64Counter
	deactivationCounter metric.Int64Counter
)

// InitMeterProvider installs a global MeterProvider backed by a Prometheus
// registry and returns the handler serving it.
func InitMeterProvider(ctx context.Context, serviceName string) (http.Handler, error) {
	if serviceName == "" {
		serviceName = meterName
	}
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otelglobal.SetMeterProvider(provider)
	if err := InitMetrics(); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}), nil
}

func Meter() metric.Meter {
	return otelglobal.Meter(meterName)
}

// InitMetrics creates the instruments once. Record* calls before it are no-ops.
func InitMetrics() error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		joinRequestsCounter, err = m.Int64Counter("accelerator_join_requests_total", metric.WithDescription("Join requests by outcome"))
		if err != nil {
			return
		}
		responsesCounter, err = m.Int64Counter("accelerator_stage_responses_total", metric.WithDescription("Stage response submissions by outcome"))
		if err != nil {
			return
		}
		evaluationsCounter, err = m.Int64Counter("accelerator_staff_evaluations_total", metric.WithDescription("Staff evaluations written"))
		if err != nil {
			return
		}
		deactivationCounter, err = m.Int64Counter("accelerator_programs_deactivated_total", metric.WithDescription("Programs deactivated by the registration check"))
	})
	return err
}

func RecordJoinRequest(ctx context.Context, outcome string) {
	if joinRequestsCounter == nil {
		return
	}
	joinRequestsCounter.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

func RecordResponseSubmission(ctx context.Context, outcome string) {
	if responsesCounter == nil {
		return
	}
	responsesCounter.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

func RecordEvaluation(ctx context.Context, kind, status string) {
	if evaluationsCounter == nil {
		return
	}
	evaluationsCounter.Add(ctx, 1, metric.WithAttributes(AttrKind.String(kind), AttrStatus.String(status)))
}

func RecordDeactivations(ctx context.Context, n int) {
	if deactivationCounter == nil || n <= 0 {
		return
	}
	deactivationCounter.Add(ctx, int64(n))
}
