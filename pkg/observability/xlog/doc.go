// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、时间戳、按日轮转）
//   - 动态级别调整（运行时热更新）
//   - 一条记录一行，text 或 json 格式
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过）。
// Builder 为一次性使用：调用 [Builder.Build] 后不可复用，需通过 [New] 创建新实例。
//
//	logger, cleanup, err := xlog.New().
//		SetRotation("/var/log/app/app.log", xrotate.WithMaxFiles(7)).
//		SetFormat("json").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// [Builder.SetRotation] 把输出接到 [xrotate.NewDaily]，cleanup 负责关闭文件。
// [Builder.SetTimestamp] 关闭后记录中不输出 time 字段，便于与外部时间戳叠加。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// 可通过 [ParseLevel] 从字符串解析。Level 实现 encoding.TextMarshaler/TextUnmarshaler，
// 支持配置文件直接反序列化。
//
// # 便捷属性
//
// [Err]、[Component]、[Count]、[Path]、[Duration]。
//
// # 派生 Logger 与级别控制
//
// [Logger.With] 和 [Logger.WithGroup] 返回 [Logger] 接口（不含 [Leveler]）。
// 派生 logger 共享父级的 LevelVar，动态级别变更会同步生效。
package xlog
