package xmetrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/logroll/pkg/observability/xrotate"
)

const (
	metricRotations     = "logroll.rotations"
	metricFilesRemoved  = "logroll.files.removed"
	metricWarnings      = "logroll.housekeeping.warnings"
	metricSweepDuration = "logroll.sweep.duration"

	spanSweep = "logroll.sweep"

	attrSink    = "sink"
	attrKind    = "kind"
	attrKept    = "logroll.sweep.kept"
	attrExpired = "logroll.sweep.expired"
	attrRemoved = "logroll.sweep.removed"
)

// 告警分类，对应 kind 属性
const (
	KindAlias       = "alias"
	KindSweepList   = "sweep_list"
	KindSweepRemove = "sweep_remove"
	KindOther       = "other"
)

var _ xrotate.Observer = (*RotateMetrics)(nil)

// RotateMetrics 轮转事件的 OTel 导出器
//
// 所有方法并发安全。Observer 回调没有 context，使用 context.Background()。
type RotateMetrics struct {
	tracer        trace.Tracer
	rotations     metric.Int64Counter
	removed       metric.Int64Counter
	warnings      metric.Int64Counter
	sweepDuration metric.Float64Histogram
	sinkAttr      attribute.KeyValue
}

// NewRotateMetrics 创建轮转指标导出器
func NewRotateMetrics(opts ...Option) (*RotateMetrics, error) {
	cfg := &config{
		instrumentationName: defaultInstrumentationName,
		sink:                defaultSink,
		meterProvider:       otel.GetMeterProvider(),
		tracerProvider:      otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	rotations, err := meter.Int64Counter(metricRotations,
		metric.WithDescription("rotation events"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateCounter, metricRotations, err)
	}
	removed, err := meter.Int64Counter(metricFilesRemoved,
		metric.WithDescription("expired log files removed"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateCounter, metricFilesRemoved, err)
	}
	warnings, err := meter.Int64Counter(metricWarnings,
		metric.WithDescription("best-effort housekeeping failures"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateCounter, metricWarnings, err)
	}
	sweepDuration, err := meter.Float64Histogram(metricSweepDuration,
		metric.WithDescription("explicit sweep duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateHistogram, metricSweepDuration, err)
	}

	return &RotateMetrics{
		tracer:        cfg.tracerProvider.Tracer(cfg.instrumentationName),
		rotations:     rotations,
		removed:       removed,
		warnings:      warnings,
		sweepDuration: sweepDuration,
		sinkAttr:      attribute.String(attrSink, cfg.sink),
	}, nil
}

// Rotated 实现 xrotate.Observer
func (m *RotateMetrics) Rotated(string) {
	m.rotations.Add(context.Background(), 1, metric.WithAttributes(m.sinkAttr))
}

// Removed 实现 xrotate.Observer
func (m *RotateMetrics) Removed(string) {
	m.removed.Add(context.Background(), 1, metric.WithAttributes(m.sinkAttr))
}

// Warned 实现 xrotate.Observer
func (m *RotateMetrics) Warned(err error) {
	m.warnings.Add(context.Background(), 1,
		metric.WithAttributes(m.sinkAttr, attribute.String(attrKind, WarningKind(err))))
}

// ObserveSweep 在 logroll.sweep span 内执行 sweep 并记录耗时
//
// sweep 的返回值原样透传。
//
//	report, err := m.ObserveSweep(ctx, func(context.Context) (xrotate.SweepReport, error) {
//		return r.Sweep()
//	})
func (m *RotateMetrics) ObserveSweep(ctx context.Context, sweep func(context.Context) (xrotate.SweepReport, error)) (xrotate.SweepReport, error) {
	ctx, span := m.tracer.Start(ctx, spanSweep, trace.WithAttributes(m.sinkAttr))
	defer span.End()

	start := time.Now()
	report, err := sweep(ctx)
	m.sweepDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(m.sinkAttr))

	span.SetAttributes(
		attribute.Int(attrKept, len(report.Kept)),
		attribute.Int(attrExpired, len(report.Expired)),
		attribute.Int(attrRemoved, len(report.Removed)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return report, err
}

// WarningKind 把轮转维护告警归类为 kind 属性值
//
// 合并错误（errors.Join）依次按 alias、sweep_list、sweep_remove 匹配。
func WarningKind(err error) string {
	switch {
	case errors.Is(err, xrotate.ErrAliasConflict), errors.Is(err, xrotate.ErrAliasRefresh):
		return KindAlias
	case errors.Is(err, xrotate.ErrSweepList):
		return KindSweepList
	case errors.Is(err, xrotate.ErrSweepRemove):
		return KindSweepRemove
	default:
		return KindOther
	}
}
