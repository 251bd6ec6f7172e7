package xrotate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/omeyang/logroll/pkg/util/xfile"
)

// 编译时接口检查
var _ Rotator = (*Daily)(nil)

// Daily 按自然日分区的 Rotator 实现
//
// 活动文件为 {dir}/{base}.{YYYY-MM-DD}.{ext}，以追加方式打开，从不截断。
// Daily 用一把互斥锁串行化所有调用；轮转状态机 dailyState 本身不加锁。
type Daily struct {
	mu     sync.Mutex
	closed bool
	state  dailyState
}

// dailyState 轮转状态机，只由持有 Daily.mu 的调用方访问
type dailyState struct {
	dir       string
	base      string
	ext       string
	localTime bool
	fileMode  os.FileMode
	clock     func() time.Time
	onError   func(error)
	observer  Observer

	alias   aliasManager
	sweeper sweeper

	openFn func(name string, perm os.FileMode) (io.WriteCloser, error)

	// path 当前活动文件路径，首次写入前为空
	path string
	// file 活动文件句柄，写入失败后置空，下次写入重新打开
	file io.WriteCloser
	// pending 已检测到轮转但尚未执行别名刷新和清理
	pending bool
}

// NewDaily 创建按日轮转的 Rotator
//
// filename 给出目录、基础名和扩展名：/var/log/app.log 对应
// 目录 /var/log、文件 app.2024-01-01.log、别名 app.log。
//
// 目录不存在或不可写时返回错误（可通过 WithCheckPermissions(false) 跳过校验）。
// 构造不会创建日志文件，首次 Write 时才打开。
func NewDaily(filename string, opts ...DailyOption) (*Daily, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	cfg := defaultDailyConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = DefaultFileMode
	}
	if err := validateDailyConfig(&cfg); err != nil {
		return nil, err
	}

	safePath, err := xfile.SanitizePath(filename)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(safePath))
	if err != nil {
		return nil, fmt.Errorf("xrotate: resolve directory: %w", err)
	}
	base, ext := splitName(filepath.Base(safePath))
	if base == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseName, filepath.Base(safePath))
	}

	if cfg.CreateDir {
		if err := xfile.EnsureDir(filepath.Join(dir, filepath.Base(safePath))); err != nil {
			return nil, err
		}
	}
	if cfg.CheckPermissions {
		if err := xfile.CheckWritableDir(dir); err != nil {
			return nil, err
		}
	}

	return &Daily{
		state: dailyState{
			dir:       dir,
			base:      base,
			ext:       ext,
			localTime: cfg.LocalTime,
			fileMode:  cfg.FileMode,
			clock:     cfg.Clock,
			onError:   cfg.OnError,
			observer:  cfg.Observer,
			alias:     newAliasManager(dir, AliasName(base, ext), cfg.Symlink),
			sweeper:   newSweeper(dir, base, ext, cfg.MaxFiles),
			openFn:    openAppend,
		},
	}, nil
}

// splitName 把 app.log 拆成 ("app", "log")，没有扩展名时 ext 为空
func splitName(name string) (base, ext string) {
	ext = filepath.Ext(name)
	base = strings.TrimSuffix(name, ext)
	return base, strings.TrimPrefix(ext, ".")
}

// openAppend 以追加方式打开（必要时创建）日志文件
func openAppend(name string, perm os.FileMode) (io.WriteCloser, error) {
	//#nosec G302,G304 -- 路径由构造参数决定，权限由调用方配置
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
}

// Write 实现 io.Writer 接口
//
// p 原样追加到当天的文件。返回时数据已交给操作系统（无用户态缓冲）。
// 只有打开或写入失败会返回错误；轮转维护的失败通过 OnError/Observer 上报。
func (d *Daily) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	return d.state.write(p)
}

// Rotate 强制执行一次轮转维护
//
// 关闭并重新打开今天的活动文件（适用于文件被外部移走的场景），然后刷新别名并清理。
// 只有打开失败会返回错误。
func (d *Daily) Rotate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	return d.state.rotate()
}

// Sweep 立即按当前日期执行一次清理，不影响活动文件和别名
//
// 与写入路径的清理不同，告警不经过 OnError，而是合并后返回（Observer 仍会收到）。
func (d *Daily) Sweep() (SweepReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return SweepReport{}, ErrClosed
	}

	var errs []error
	report := d.state.sweepAt(d.state.now(), func(err error) {
		errs = append(errs, err)
		d.state.notifyWarned(err)
	})
	return report, errors.Join(errs...)
}

// Plan 计算按当前日期清理时会保留和删除哪些文件，不做任何修改
func (d *Daily) Plan() (SweepReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return SweepReport{}, ErrClosed
	}
	return d.state.sweeper.plan(d.state.now())
}

// ActivePath 返回当前活动文件的完整路径，首次写入前返回空字符串
func (d *Daily) ActivePath() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.path
}

// CurrentPath 返回按当前日期应写入的文件路径，不打开文件
func (d *Daily) CurrentPath() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return filepath.Join(d.state.dir, DailyName(d.state.base, d.state.ext, d.state.now()))
}

// AliasPath 返回别名符号链接的完整路径
func (d *Daily) AliasPath() string {
	return d.state.alias.path()
}

// AliasTarget 返回别名当前指向的文件名，别名不存在时返回空字符串
func (d *Daily) AliasTarget() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.alias.target()
}

// Close 实现 io.Closer 接口
//
// 关闭后调用 Write、Rotate、Sweep 或 Plan 返回 [ErrClosed]，重复调用 Close 也返回 [ErrClosed]。
func (d *Daily) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return d.state.closeFile()
}

// now 返回按配置时区换算后的当前时间
func (s *dailyState) now() time.Time {
	t := s.clock()
	if s.localTime {
		return t.Local()
	}
	return t.UTC()
}

// write 追加 p，并在检测到日期变化后执行一次轮转维护
func (s *dailyState) write(p []byte) (int, error) {
	now := s.now()
	candidate := filepath.Join(s.dir, DailyName(s.base, s.ext, now))

	if s.path != candidate {
		// 先切换活动路径再做任何副作用，中途失败不会回到旧路径上重试
		s.warn(s.closeFile())
		s.path = candidate
		s.pending = true
	}

	if s.file == nil {
		f, err := s.openFn(s.path, s.fileMode)
		if err != nil {
			return 0, err
		}
		s.file = f
	}

	n, err := s.file.Write(p)
	if err != nil {
		// 不回滚 path：下次写入对同一路径重新打开
		_ = s.closeFile()
		return n, err
	}

	if s.pending {
		s.pending = false
		s.housekeep(now)
	}
	return n, nil
}

// rotate 重新打开活动文件并执行轮转维护
func (s *dailyState) rotate() error {
	now := s.now()
	s.warn(s.closeFile())
	s.path = filepath.Join(s.dir, DailyName(s.base, s.ext, now))

	f, err := s.openFn(s.path, s.fileMode)
	if err != nil {
		s.pending = true
		return err
	}
	s.file = f
	s.pending = false
	s.housekeep(now)
	return nil
}

// housekeep 轮转副作用：通知、刷新别名、清理，顺序固定
func (s *dailyState) housekeep(now time.Time) {
	s.notifyRotated(s.path)
	s.warn(s.alias.refresh(s.path))
	s.sweepAt(now, s.warn)
}

func (s *dailyState) sweepAt(now time.Time, warn func(error)) SweepReport {
	return s.sweeper.sweep(now, warn, s.notifyRemoved)
}

// closeFile 关闭活动文件句柄（如果有）
func (s *dailyState) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// warn 上报轮转维护告警，err 为 nil 时不做任何事
func (s *dailyState) warn(err error) {
	if err == nil {
		return
	}
	s.notifyWarned(err)
	if s.onError != nil {
		safeCall(func() { s.onError(err) })
	}
}

func (s *dailyState) notifyRotated(path string) {
	if s.observer != nil {
		safeCall(func() { s.observer.Rotated(path) })
	}
}

func (s *dailyState) notifyRemoved(path string) {
	if s.observer != nil {
		safeCall(func() { s.observer.Removed(path) })
	}
}

func (s *dailyState) notifyWarned(err error) {
	if s.observer != nil {
		safeCall(func() { s.observer.Warned(err) })
	}
}

// safeCall 隔离回调 panic，日志维护通知不能反向中断写入
func safeCall(fn func()) {
	defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
	fn()
}
