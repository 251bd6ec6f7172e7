package xrotate

import "io"

// 编译时断言：Rotator 接口是 io.WriteCloser 的超集
var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口
//
// 隐式实现 [io.WriteCloser]，可直接用于任何接受 io.Writer 的场景
// （如 xlog 的输出目标）。宿主日志框架只需要调用 Write。
// 所有实现都必须是并发安全的。
//
// 扩展新实现时，必须满足以下约定：
//   - Write 必须是并发安全的
//   - Close 后调用 Write 或 Rotate 应返回 [ErrClosed]
//   - Rotate 可以在任意时刻调用
type Rotator interface {
	// Write 追加一条已格式化的记录
	// 满足轮转条件时自动执行轮转
	Write(p []byte) (n int, err error)

	// Close 关闭轮转器，释放资源
	// 重复调用应返回 [ErrClosed]
	Close() error

	// Rotate 手动触发轮转
	Rotate() error
}

// Observer 轮转事件观察者
//
// 回调在写入路径上同步执行，应保持轻量。回调 panic 会被隔离。
// 回调不得向同一 Rotator 写入数据，否则会死锁。
type Observer interface {
	// Rotated 活动文件切换到 path 后调用（每次轮转事件一次）
	Rotated(path string)

	// Removed 清理删除 path 后调用
	Removed(path string)

	// Warned 轮转维护失败时调用
	// 别名和清理失败包装了 ErrAlias*/ErrSweep*，关闭旧文件失败时为原始错误
	Warned(err error)
}
