// Package xmetrics 把日志轮转事件导出为 OpenTelemetry 指标和链路。
//
// [RotateMetrics] 实现 xrotate.Observer，可直接传给 xrotate.WithObserver：
//
//	m, err := xmetrics.NewRotateMetrics(xmetrics.WithSink("app"))
//	if err != nil {
//		return err
//	}
//	r, err := xrotate.NewDaily("/var/log/app/app.log", xrotate.WithObserver(m))
//
// # 指标命名
//
//   - logroll.rotations：轮转事件次数
//   - logroll.files.removed：清理删除的文件数
//   - logroll.housekeeping.warnings：轮转维护告警次数，属性 kind
//   - logroll.sweep.duration：显式清理耗时（秒）
//
// 所有指标带 sink 属性（默认 "default"）。
//
// # 链路
//
// [RotateMetrics.ObserveSweep] 为一次显式清理创建 logroll.sweep span，
// 记录保留、过期、删除的文件数量。
//
// 未指定 Provider 时使用 otel 全局 Provider（默认 no-op）。
package xmetrics
