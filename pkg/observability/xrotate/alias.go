package xrotate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// aliasManager 维护 {base}.{ext} → 当天文件 的符号链接
//
// 文件系统操作通过函数字段注入，测试中可统计变更次数或模拟失败。
type aliasManager struct {
	enabled bool
	dir     string
	name    string

	lstat    func(name string) (os.FileInfo, error)
	readlink func(name string) (string, error)
	symlink  func(oldname, newname string) error
	rename   func(oldpath, newpath string) error
	remove   func(name string) error
}

func newAliasManager(dir, name string, enabled bool) aliasManager {
	return aliasManager{
		enabled:  enabled,
		dir:      dir,
		name:     name,
		lstat:    os.Lstat,
		readlink: os.Readlink,
		symlink:  os.Symlink,
		rename:   os.Rename,
		remove:   os.Remove,
	}
}

// path 返回别名的完整路径
func (a *aliasManager) path() string {
	return filepath.Join(a.dir, a.name)
}

// refresh 让别名指向 target（只使用 target 的文件名，链接内容为相对路径）
//
// 幂等：别名已指向 target 时不做任何文件系统变更。
// 别名指向其他文件时，先在临时名称上创建新链接，再 rename 覆盖旧链接，
// 任意时刻别名要么指向旧文件要么指向新文件。
// 别名路径被普通文件或目录占用时返回 ErrAliasConflict，不做任何修改。
func (a *aliasManager) refresh(target string) error {
	if !a.enabled {
		return nil
	}

	linkPath := a.path()
	targetName := filepath.Base(target)

	info, err := a.lstat(linkPath)
	if errors.Is(err, fs.ErrNotExist) {
		if err := a.symlink(targetName, linkPath); err != nil {
			return fmt.Errorf("%w: create %s -> %s: %w", ErrAliasRefresh, a.name, targetName, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrAliasRefresh, a.name, err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return fmt.Errorf("%w: %s", ErrAliasConflict, linkPath)
	}

	current, err := a.readlink(linkPath)
	if err != nil {
		return fmt.Errorf("%w: readlink %s: %w", ErrAliasRefresh, a.name, err)
	}
	if current == targetName {
		return nil
	}
	return a.swap(targetName, linkPath)
}

// swap 原子替换已存在的别名
func (a *aliasManager) swap(targetName, linkPath string) error {
	tmp := filepath.Join(a.dir, "."+a.name+".tmp")

	// 上次失败可能遗留临时链接
	if err := a.remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove stale %s: %w", ErrAliasRefresh, filepath.Base(tmp), err)
	}
	if err := a.symlink(targetName, tmp); err != nil {
		return fmt.Errorf("%w: create %s -> %s: %w", ErrAliasRefresh, filepath.Base(tmp), targetName, err)
	}
	if err := a.rename(tmp, linkPath); err != nil {
		_ = a.remove(tmp)
		return fmt.Errorf("%w: replace %s -> %s: %w", ErrAliasRefresh, a.name, targetName, err)
	}
	return nil
}

// target 返回别名当前指向的文件名，别名不存在时返回空字符串
func (a *aliasManager) target() (string, error) {
	current, err := a.readlink(a.path())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	return current, err
}
