package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider        *metric.MeterProvider
	meter                otelmetric.Meter
	verificationCounter  otelmetric.Int64Counter
	verificationDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	verificationCounter, _ := meter.Int64Counter(
		"verifications.processed",
		otelmetric.WithDescription("Number of certificate verifications processed"),
	)

	verificationDuration, _ := meter.Float64Histogram(
		"verifications.duration",
		otelmetric.WithDescription("Certificate verification duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:        provider,
		meter:                meter,
		verificationCounter:  verificationCounter,
		verificationDuration: verificationDuration,
	}
}

func (o *Observability) RecordVerification(ctx context.Context, status string) {
	if o.verificationCounter != nil {
		o.verificationCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordVerificationDuration(ctx context.Context, duration time.Duration, status string) {
	if o.verificationDuration != nil {
		o.verificationDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
