// Package observability 提供日志落盘和可观测性相关的子包。
//
// 子包列表：
//   - xrotate: 按自然日轮转的日志文件，别名维护和保留清理
//   - xlog: 结构化日志，基于 log/slog，可直接输出到 xrotate
//   - xmetrics: 轮转事件的 OpenTelemetry 指标和清理追踪
//
// xrotate 本身不依赖 xlog：它是日志的落点，维护告警通过 OnError 和 Observer 上报。
package observability
