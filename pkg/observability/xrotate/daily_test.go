package xrotate

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// 测试辅助
// =============================================================================

// newTestDaily 创建使用假时钟的 Daily，告警收集到返回的 errorSink
func newTestDaily(t *testing.T, dir string, clock *fakeClock, opts ...DailyOption) (*Daily, *recordingObserver, *errorSink) {
	t.Helper()
	obs := &recordingObserver{}
	sink := &errorSink{}
	base := []DailyOption{
		WithClock(clock.Now),
		WithObserver(obs),
		WithOnError(sink.collect),
	}
	d, err := NewDaily(filepath.Join(dir, "app.log"), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, obs, sink
}

func writeLine(t *testing.T, d *Daily, line string) {
	t.Helper()
	n, err := d.Write([]byte(line + "\n"))
	require.NoError(t, err)
	require.Equal(t, len(line)+1, n)
}

// =============================================================================
// 构造与配置测试
// =============================================================================

func TestNewDaily_ConfigValidation(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		opts     []DailyOption
		wantErr  error
	}{
		{name: "空文件名", filename: "", wantErr: ErrEmptyFilename},
		{name: "MaxFiles 为零", filename: filepath.Join(dir, "app.log"), opts: []DailyOption{WithMaxFiles(0)}, wantErr: ErrInvalidMaxFiles},
		{name: "MaxFiles 为负数", filename: filepath.Join(dir, "app.log"), opts: []DailyOption{WithMaxFiles(-1)}, wantErr: ErrInvalidMaxFiles},
		{name: "MaxFiles 超过上限", filename: filepath.Join(dir, "app.log"), opts: []DailyOption{WithMaxFiles(3651)}, wantErr: ErrInvalidMaxFiles},
		{name: "FileMode 包含文件类型位", filename: filepath.Join(dir, "app.log"), opts: []DailyOption{WithFileMode(os.ModeDir | 0644)}, wantErr: ErrInvalidFileMode},
		{name: "只有扩展名", filename: filepath.Join(dir, ".log"), wantErr: ErrInvalidBaseName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDaily(tt.filename, tt.opts...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewDaily_Defaults(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDaily(filepath.Join(dir, "app.log"), nil)
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, filepath.Join(dir, "app.log"), d.AliasPath())
	assert.Empty(t, d.ActivePath(), "首次写入前没有活动文件")
	assert.Empty(t, listDir(t, dir), "构造不应创建文件")
}

func TestNewDaily_MissingDirectory(t *testing.T) {
	_, err := NewDaily(filepath.Join(t.TempDir(), "missing", "app.log"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewDaily_NotDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "file")

	_, err := NewDaily(filepath.Join(dir, "file", "app.log"))
	require.Error(t, err)
}

func TestNewDaily_SkipPermissionCheck(t *testing.T) {
	d, err := NewDaily(filepath.Join(t.TempDir(), "missing", "app.log"), WithCheckPermissions(false))
	require.NoError(t, err)
	defer d.Close()

	// 目录不存在，写入失败并返回给调用方
	_, err = d.Write([]byte("x\n"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewDaily_CreateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	clock := newFakeClock(day(2024, 1, 1))

	d, err := NewDaily(filepath.Join(dir, "app.log"), WithCreateDir(true), WithClock(clock.Now), WithOnError(nil))
	require.NoError(t, err)
	defer d.Close()

	writeLine(t, d, "hello")
	assert.FileExists(t, filepath.Join(dir, "app.2024-01-01.log"))
}

func TestNewDaily_NoExtension(t *testing.T) {
	requireSymlink(t)
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))

	d, err := NewDaily(filepath.Join(dir, "app"), WithClock(clock.Now), WithOnError(nil))
	require.NoError(t, err)
	defer d.Close()

	writeLine(t, d, "hello")
	assert.Equal(t, filepath.Join(dir, "app.2024-01-01"), d.ActivePath())
	target, err := os.Readlink(filepath.Join(dir, "app"))
	require.NoError(t, err)
	assert.Equal(t, "app.2024-01-01", target)
}

func TestNewDaily_RelativePath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	clock := newFakeClock(day(2024, 1, 1))

	d, err := NewDaily("app.log", WithClock(clock.Now), WithSymlink(false))
	require.NoError(t, err)
	defer d.Close()

	writeLine(t, d, "hello")
	assert.True(t, filepath.IsAbs(d.ActivePath()))
	assert.FileExists(t, filepath.Join(dir, "app.2024-01-01.log"))
}

// =============================================================================
// 写入与轮转测试
// =============================================================================

// TestDaily_EndToEnd 覆盖跨天写入、别名更新和保留窗口清理的完整流程
func TestDaily_EndToEnd(t *testing.T) {
	requireSymlink(t)
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, _, sink := newTestDaily(t, dir, clock, WithMaxFiles(3))

	aliasTarget := func() string {
		target, err := os.Readlink(filepath.Join(dir, "app.log"))
		require.NoError(t, err)
		return target
	}

	// 第 1 天
	writeLine(t, d, "hello")
	assert.Equal(t, "hello\n", readFile(t, filepath.Join(dir, "app.2024-01-01.log")))
	assert.Equal(t, "app.2024-01-01.log", aliasTarget())

	// 第 2 天
	clock.Set(day(2024, 1, 2))
	writeLine(t, d, "world")
	assert.Equal(t, "world\n", readFile(t, filepath.Join(dir, "app.2024-01-02.log")))
	assert.Equal(t, "app.2024-01-02.log", aliasTarget())
	assert.Equal(t, "hello\n", readFile(t, filepath.Join(dir, "app.2024-01-01.log")), "第 1 天文件仍在窗口内")

	// 第 5 天：窗口为 01-03 ~ 01-05
	clock.Set(day(2024, 1, 5))
	writeLine(t, d, "again")
	assert.Equal(t, []string{"app.2024-01-05.log", "app.log"}, listDir(t, dir))
	assert.Equal(t, "app.2024-01-05.log", aliasTarget())
	assert.Equal(t, filepath.Join(dir, "app.2024-01-05.log"), d.ActivePath())

	assert.Empty(t, sink.all())
}

func TestDaily_RotatesOncePerDay(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, obs, _ := newTestDaily(t, dir, clock)

	for i := 0; i < 100; i++ {
		clock.Set(day(2024, 1, 1).Add(time.Duration(i) * time.Minute))
		writeLine(t, d, "same day")
	}
	assert.Equal(t, []string{"app.2024-01-01.log"}, obs.rotations())

	content := readFile(t, filepath.Join(dir, "app.2024-01-01.log"))
	assert.Equal(t, 100, strings.Count(content, "\n"))
}

func TestDaily_RotatesOncePerBoundary(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, obs, _ := newTestDaily(t, dir, clock)

	for _, when := range []time.Time{day(2024, 1, 1), day(2024, 1, 2), day(2024, 1, 3)} {
		for i := 0; i < 10; i++ {
			clock.Set(when.Add(time.Duration(i) * time.Hour))
			writeLine(t, d, "line")
		}
	}

	assert.Equal(t, []string{
		"app.2024-01-01.log",
		"app.2024-01-02.log",
		"app.2024-01-03.log",
	}, obs.rotations())
}

func TestDaily_AppendsToExistingFile(t *testing.T) {
	requireSymlink(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.2024-01-01.log"), []byte("before restart\n"), 0600))
	require.NoError(t, os.Symlink("app.2024-01-01.log", filepath.Join(dir, "app.log")))

	clock := newFakeClock(day(2024, 1, 1))
	d, obs, sink := newTestDaily(t, dir, clock)

	writeLine(t, d, "after restart")

	assert.Equal(t, "before restart\nafter restart\n", readFile(t, filepath.Join(dir, "app.2024-01-01.log")))
	assert.Len(t, obs.rotations(), 1, "重启后首次写入是一次轮转事件")
	assert.Empty(t, sink.all(), "别名已正确时刷新不报错")
}

func TestDaily_WriteFailureNotRolledBack(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, obs, _ := newTestDaily(t, dir, clock)

	errDiskFull := errors.New("no space left on device")
	failures := 1
	d.state.openFn = func(name string, perm os.FileMode) (io.WriteCloser, error) {
		if failures > 0 {
			failures--
			return nil, errDiskFull
		}
		return openAppend(name, perm)
	}

	_, err := d.Write([]byte("lost\n"))
	require.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, filepath.Join(dir, "app.2024-01-01.log"), d.ActivePath(), "失败后活动路径不回滚")
	assert.Empty(t, obs.rotations(), "写入失败时不执行轮转维护")

	writeLine(t, d, "kept")
	assert.Equal(t, "kept\n", readFile(t, filepath.Join(dir, "app.2024-01-01.log")))
	assert.Len(t, obs.rotations(), 1, "首次成功写入后补做一次轮转维护")

	writeLine(t, d, "more")
	assert.Len(t, obs.rotations(), 1)
}

// failingWriter 每次写入都失败
type failingWriter struct {
	closed bool
}

func (w *failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }
func (w *failingWriter) Close() error              { w.closed = true; return nil }

func TestDaily_WriteErrorDropsHandle(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, _, _ := newTestDaily(t, dir, clock)

	fw := &failingWriter{}
	opens := 0
	d.state.openFn = func(name string, perm os.FileMode) (io.WriteCloser, error) {
		opens++
		if opens == 1 {
			return fw, nil
		}
		return openAppend(name, perm)
	}

	_, err := d.Write([]byte("x\n"))
	require.Error(t, err)
	assert.True(t, fw.closed, "失败的句柄应被关闭")

	writeLine(t, d, "y")
	assert.Equal(t, 2, opens, "下次写入重新打开同一路径")
}

func TestDaily_HousekeepingFailureDoesNotFailWrite(t *testing.T) {
	dir := t.TempDir()
	// 别名位置被目录占用
	require.NoError(t, os.Mkdir(filepath.Join(dir, "app.log"), 0750))

	clock := newFakeClock(day(2024, 1, 1))
	d, obs, sink := newTestDaily(t, dir, clock)

	writeLine(t, d, "hello")

	errs := sink.all()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrAliasConflict)
	assert.Len(t, obs.warnings, 1)
	assert.Equal(t, "hello\n", readFile(t, filepath.Join(dir, "app.2024-01-01.log")))
}

func TestDaily_SweepListFailureDoesNotFailWrite(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, _, sink := newTestDaily(t, dir, clock, WithSymlink(false))

	d.state.sweeper.readDir = func(string) ([]os.DirEntry, error) {
		return nil, os.ErrPermission
	}

	writeLine(t, d, "hello")
	errs := sink.all()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrSweepList)
}

func TestDaily_SymlinkDisabled(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, _, _ := newTestDaily(t, dir, clock, WithSymlink(false))

	writeLine(t, d, "hello")
	assert.Equal(t, []string{"app.2024-01-01.log"}, listDir(t, dir))
}

func TestDaily_UTCByDefault(t *testing.T) {
	dir := t.TempDir()
	// 东八区 1 月 2 日凌晨 1 点 = UTC 1 月 1 日 17 点
	clock := newFakeClock(time.Date(2024, 1, 2, 1, 0, 0, 0, time.FixedZone("CST", 8*3600)))
	d, _, _ := newTestDaily(t, dir, clock, WithSymlink(false))

	writeLine(t, d, "hello")
	assert.Equal(t, filepath.Join(dir, "app.2024-01-01.log"), d.ActivePath())
}

func TestDaily_LocalTime(t *testing.T) {
	dir := t.TempDir()
	zone := time.FixedZone("CST", 8*3600)
	old := time.Local
	time.Local = zone
	t.Cleanup(func() { time.Local = old })

	clock := newFakeClock(time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC))
	d, _, _ := newTestDaily(t, dir, clock, WithSymlink(false), WithLocalTime(true))

	writeLine(t, d, "hello")
	assert.Equal(t, filepath.Join(dir, "app.2024-01-02.log"), d.ActivePath())
}

func TestDaily_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("权限位在 Windows 上无效")
	}
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, _, _ := newTestDaily(t, dir, clock, WithSymlink(false), WithFileMode(0600))

	writeLine(t, d, "hello")
	info, err := os.Stat(d.ActivePath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDaily_EmptyWrite(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, _, _ := newTestDaily(t, dir, clock, WithSymlink(false))

	n, err := d.Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDaily_ObserverPanicIsolated(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))

	d, err := NewDaily(filepath.Join(dir, "app.log"),
		WithClock(clock.Now),
		WithSymlink(false),
		WithObserver(panicObserver{}),
		WithOnError(func(error) { panic("boom") }),
	)
	require.NoError(t, err)
	defer d.Close()

	assert.NotPanics(t, func() { writeLine(t, d, "hello") })
}

type panicObserver struct{}

func (panicObserver) Rotated(string) { panic("rotated") }
func (panicObserver) Removed(string) { panic("removed") }
func (panicObserver) Warned(error)   { panic("warned") }

// TestDaily_ConcurrentWrite 并发写入不丢行、不交错
func TestDaily_ConcurrentWrite(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, obs, _ := newTestDaily(t, dir, clock, WithSymlink(false))

	const goroutines, perG = 8, 200
	line := []byte("concurrent log line\n")

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perG {
				_, err := d.Write(line)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	content := readFile(t, filepath.Join(dir, "app.2024-01-01.log"))
	assert.Equal(t, bytes.Repeat(line, goroutines*perG), []byte(content))
	assert.Len(t, obs.rotations(), 1)
}

// =============================================================================
// Rotate / Sweep / Plan / Close 测试
// =============================================================================

func TestDaily_RotateReopens(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, obs, _ := newTestDaily(t, dir, clock, WithSymlink(false))

	writeLine(t, d, "first")
	// 外部移走活动文件
	require.NoError(t, os.Rename(d.ActivePath(), filepath.Join(dir, "moved.log")))

	require.NoError(t, d.Rotate())
	writeLine(t, d, "second")

	assert.Equal(t, "second\n", readFile(t, filepath.Join(dir, "app.2024-01-01.log")))
	assert.Equal(t, "first\n", readFile(t, filepath.Join(dir, "moved.log")))
	assert.Len(t, obs.rotations(), 2)
}

func TestDaily_RotateBeforeWrite(t *testing.T) {
	requireSymlink(t)
	dir := t.TempDir()
	touch(t, dir, "app.2020-01-01.log")
	clock := newFakeClock(day(2024, 1, 1))
	d, _, _ := newTestDaily(t, dir, clock)

	require.NoError(t, d.Rotate())
	assert.Equal(t, []string{"app.2024-01-01.log", "app.log"}, listDir(t, dir))
}

func TestDaily_RotateOpenFailure(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, obs, _ := newTestDaily(t, dir, clock, WithSymlink(false))

	errOpen := errors.New("open failed")
	d.state.openFn = func(string, os.FileMode) (io.WriteCloser, error) { return nil, errOpen }
	require.ErrorIs(t, d.Rotate(), errOpen)
	assert.Empty(t, obs.rotations())

	d.state.openFn = openAppend
	writeLine(t, d, "hello")
	assert.Len(t, obs.rotations(), 1, "Rotate 失败后由下一次写入补做维护")
}

func TestDaily_Sweep(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "app.2023-12-01.log")
	touch(t, dir, "app.2024-01-01.log")
	clock := newFakeClock(day(2024, 1, 1))
	d, obs, sink := newTestDaily(t, dir, clock, WithMaxFiles(1))

	report, err := d.Sweep()
	require.NoError(t, err)
	assert.Equal(t, []string{"app.2023-12-01.log"}, report.Removed)
	assert.Equal(t, []string{"app.2024-01-01.log"}, report.Kept)
	assert.Equal(t, []string{"app.2023-12-01.log"}, obs.removed)
	assert.Empty(t, d.ActivePath(), "Sweep 不打开活动文件")
	assert.Empty(t, sink.all())
}

func TestDaily_SweepReturnsWarnings(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, obs, sink := newTestDaily(t, dir, clock)
	d.state.sweeper.readDir = func(string) ([]os.DirEntry, error) { return nil, os.ErrPermission }

	_, err := d.Sweep()
	require.ErrorIs(t, err, ErrSweepList)
	assert.Empty(t, sink.all(), "显式 Sweep 的错误直接返回，不经过 OnError")
	assert.Len(t, obs.warnings, 1)
}

func TestDaily_Plan(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "app.2023-12-01.log")
	clock := newFakeClock(day(2024, 1, 1))
	d, _, _ := newTestDaily(t, dir, clock)

	report, err := d.Plan()
	require.NoError(t, err)
	assert.Equal(t, []string{"app.2023-12-01.log"}, report.Expired)
	assert.FileExists(t, filepath.Join(dir, "app.2023-12-01.log"))
}

func TestDaily_AliasTarget(t *testing.T) {
	requireSymlink(t)
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, _, _ := newTestDaily(t, dir, clock)

	target, err := d.AliasTarget()
	require.NoError(t, err)
	assert.Empty(t, target)

	writeLine(t, d, "hello")
	target, err = d.AliasTarget()
	require.NoError(t, err)
	assert.Equal(t, "app.2024-01-01.log", target)
}

func TestDaily_CurrentPath(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, _, _ := newTestDaily(t, dir, clock)

	assert.Empty(t, d.ActivePath())
	assert.Equal(t, filepath.Join(dir, "app.2024-01-01.log"), d.CurrentPath())
	assert.NoFileExists(t, d.CurrentPath())

	writeLine(t, d, "hello")
	clock.Set(day(2024, 1, 2))
	assert.Equal(t, filepath.Join(dir, "app.2024-01-02.log"), d.CurrentPath())
	assert.Equal(t, filepath.Join(dir, "app.2024-01-01.log"), d.ActivePath())
}

func TestDaily_Close(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(day(2024, 1, 1))
	d, err := NewDaily(filepath.Join(dir, "app.log"), WithClock(clock.Now))
	require.NoError(t, err)

	writeLine(t, d, "before close")
	require.NoError(t, d.Close())

	assert.ErrorIs(t, d.Close(), ErrClosed)
	_, err = d.Write([]byte("after close\n"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, d.Rotate(), ErrClosed)
	_, err = d.Sweep()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = d.Plan()
	assert.ErrorIs(t, err, ErrClosed)

	assert.Equal(t, "before close\n", readFile(t, filepath.Join(dir, "app.2024-01-01.log")))
}

func TestDaily_CloseWithoutWrite(t *testing.T) {
	d, err := NewDaily(filepath.Join(t.TempDir(), "app.log"))
	require.NoError(t, err)
	assert.NoError(t, d.Close())
}

func TestRotatorInterface(t *testing.T) {
	var _ Rotator = (*Daily)(nil)
	var _ io.WriteCloser = (*Daily)(nil)
}
