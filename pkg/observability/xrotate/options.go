package xrotate

import (
	"fmt"
	"os"
	"time"
)

// 按日轮转默认配置值
const (
	// DefaultMaxFiles 默认保留的自然日数量（含今天）
	DefaultMaxFiles = 10

	// DefaultSymlink 默认维护 {base}.{ext} 别名
	DefaultSymlink = true

	// DefaultLocalTime 默认是否按本地时间划分日期（false 表示 UTC）
	DefaultLocalTime = false

	// DefaultFileMode 默认日志文件权限
	DefaultFileMode os.FileMode = 0644

	// maxMaxFiles 保留天数上限（约 10 年）
	maxMaxFiles = 3650
)

// dailyConfig 按日轮转配置
type dailyConfig struct {
	// MaxFiles 保留窗口大小：从今天起向前的自然日数量
	// 默认值 DefaultMaxFiles，必须在 1~3650 范围内
	MaxFiles int

	// Symlink 是否维护指向当天文件的别名 {base}.{ext}
	Symlink bool

	// LocalTime 日期是否按本地时区划分
	// false 时使用 UTC
	LocalTime bool

	// FileMode 新建日志文件的权限，仅允许权限位（0000~0777）
	// 实际权限还受进程 umask 影响
	FileMode os.FileMode

	// CheckPermissions 构造时是否校验目录存在且可写
	CheckPermissions bool

	// CreateDir 构造时是否自动创建目录
	CreateDir bool

	// OnError 轮转维护告警回调，默认输出到 os.Stderr
	//
	// 安全约束：回调函数不得向同一 Rotator 写入数据，否则会死锁。
	OnError func(error)

	// Observer 轮转事件观察者，可以为 nil
	Observer Observer

	// Clock 当前时间来源，默认 time.Now
	Clock func() time.Time
}

// DailyOption 按日轮转配置选项函数
type DailyOption func(*dailyConfig)

// WithMaxFiles 设置保留的自然日数量（含今天）
func WithMaxFiles(n int) DailyOption {
	return func(c *dailyConfig) {
		c.MaxFiles = n
	}
}

// WithSymlink 设置是否维护别名符号链接
func WithSymlink(enable bool) DailyOption {
	return func(c *dailyConfig) {
		c.Symlink = enable
	}
}

// WithLocalTime 设置日期是否按本地时区划分
func WithLocalTime(local bool) DailyOption {
	return func(c *dailyConfig) {
		c.LocalTime = local
	}
}

// WithFileMode 设置新建日志文件的权限
func WithFileMode(mode os.FileMode) DailyOption {
	return func(c *dailyConfig) {
		c.FileMode = mode
	}
}

// WithCheckPermissions 设置构造时是否校验目录可写
func WithCheckPermissions(check bool) DailyOption {
	return func(c *dailyConfig) {
		c.CheckPermissions = check
	}
}

// WithCreateDir 设置构造时是否自动创建目录（权限 0750）
func WithCreateDir(create bool) DailyOption {
	return func(c *dailyConfig) {
		c.CreateDir = create
	}
}

// WithOnError 设置轮转维护告警回调
//
// 别名刷新失败、目录列举失败、单个文件删除失败时调用，err 可用 errors.Is 区分。
// 传入 nil 表示静默忽略。
//
// 回调函数不得向同一 Rotator 写入数据。
func WithOnError(fn func(error)) DailyOption {
	return func(c *dailyConfig) {
		c.OnError = fn
	}
}

// WithObserver 设置轮转事件观察者
func WithObserver(o Observer) DailyOption {
	return func(c *dailyConfig) {
		c.Observer = o
	}
}

// WithClock 设置当前时间来源，nil 被忽略
func WithClock(now func() time.Time) DailyOption {
	return func(c *dailyConfig) {
		if now != nil {
			c.Clock = now
		}
	}
}

func defaultDailyConfig() dailyConfig {
	return dailyConfig{
		MaxFiles:         DefaultMaxFiles,
		Symlink:          DefaultSymlink,
		LocalTime:        DefaultLocalTime,
		FileMode:         DefaultFileMode,
		CheckPermissions: true,
		OnError:          stderrOnError,
		Clock:            time.Now,
	}
}

// validateDailyConfig 验证按日轮转配置
func validateDailyConfig(cfg *dailyConfig) error {
	if cfg.MaxFiles < 1 || cfg.MaxFiles > maxMaxFiles {
		return fmt.Errorf("%w: got %d, want 1~%d", ErrInvalidMaxFiles, cfg.MaxFiles, maxMaxFiles)
	}
	if cfg.FileMode&^os.FileMode(0o777) != 0 {
		return fmt.Errorf("%w: got %04o, only permission bits (0000~0777) allowed",
			ErrInvalidFileMode, cfg.FileMode)
	}
	return nil
}

// stderrOnError 默认告警输出
func stderrOnError(err error) {
	fmt.Fprintf(os.Stderr, "xrotate: warning: %v\n", err)
}
