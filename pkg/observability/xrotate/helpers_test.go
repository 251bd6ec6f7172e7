package xrotate

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock 可手动拨动的时钟
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// day 返回 UTC 某天上午 10 点
func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 10, 0, 0, 0, time.UTC)
}

// recordingObserver 记录所有轮转事件
type recordingObserver struct {
	mu       sync.Mutex
	rotated  []string
	removed  []string
	warnings []error
}

func (o *recordingObserver) Rotated(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotated = append(o.rotated, filepath.Base(path))
}

func (o *recordingObserver) Removed(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.removed = append(o.removed, filepath.Base(path))
}

func (o *recordingObserver) Warned(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings = append(o.warnings, err)
}

func (o *recordingObserver) rotations() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.rotated...)
}

// errorSink 收集 OnError 回调
type errorSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *errorSink) collect(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *errorSink) all() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// requireSymlink 在不支持符号链接的环境中跳过测试
func requireSymlink(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Windows 创建符号链接需要额外权限")
	}
}

// listDir 返回目录下的文件名（升序）
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// touch 创建内容为 name 的文件
func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
