package xmetrics

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultInstrumentationName = "github.com/omeyang/logroll/pkg/observability/xmetrics"
	defaultSink                = "default"
)

type config struct {
	instrumentationName string
	sink                string
	meterProvider       metric.MeterProvider
	tracerProvider      trace.TracerProvider
}

// Option RotateMetrics 配置选项
type Option func(*config)

// WithInstrumentationName 设置 OTel instrumentation 名称，空值被忽略
func WithInstrumentationName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.instrumentationName = name
		}
	}
}

// WithSink 设置 sink 属性值，用于区分同一进程内的多个日志目标
func WithSink(name string) Option {
	return func(c *config) {
		if name != "" {
			c.sink = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider，nil 被忽略
func WithMeterProvider(p metric.MeterProvider) Option {
	return func(c *config) {
		if p != nil {
			c.meterProvider = p
		}
	}
}

// WithTracerProvider 设置 TracerProvider，nil 被忽略
func WithTracerProvider(p trace.TracerProvider) Option {
	return func(c *config) {
		if p != nil {
			c.tracerProvider = p
		}
	}
}
