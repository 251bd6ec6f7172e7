// Package xrotate 提供日志文件轮转功能。
//
// Rotator 接口定义了轮转器的核心行为（Write/Close/Rotate），所有实现并发安全。
//
// # 当前实现
//
//   - [NewDaily]: 按自然日分区的轮转，文件名为 {base}.{YYYY-MM-DD}.{ext}
//
// # 按日轮转
//
// 每次写入根据当前日期计算活动文件路径。路径变化即为一次轮转事件：
// 先更新活动路径，再追加写入，写入成功后依次刷新别名符号链接
// （{base}.{ext} → 当天文件，相对路径）并清理保留窗口以外的历史文件。
// 同一天内的后续写入不会重复触发别名和清理。
//
// 保留窗口为从今天起向前的 MaxFiles 个自然日。清理只处理结构上匹配
// {base}.<YYYY-MM-DD>.{ext} 的文件，别名本身和其他文件（如 notes.txt）从不删除。
//
// # 错误处理
//
// 只有写入本身的 I/O 错误会从 Write 返回。别名刷新、目录列举、单个文件删除的失败
// 都是尽力而为的告警，通过 [WithOnError] 回调和 [Observer] 上报，不影响写入结果。
//
// 轮转器不通过 slog 记录内部错误：它本身可能就是 slog 的输出目标。
//
// # 扩展新实现
//
//  1. 创建新文件实现 Rotator 接口
//  2. 定义独立的 Config 和 Option
//  3. 提供独立的构造函数
//  4. 不修改 Rotator 接口
package xrotate
