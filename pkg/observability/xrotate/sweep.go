package xrotate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/omeyang/logroll/pkg/util/xfile"
)

// SweepReport 一次清理（或清理计划）的结果
//
// 所有列表按文件名升序排列，只包含匹配命名规则的候选文件。
type SweepReport struct {
	// Kept 位于保留窗口内的候选文件
	Kept []string

	// Expired 位于保留窗口外的候选文件
	Expired []string

	// Removed 实际删除成功的文件（Plan 时为空）
	Removed []string
}

// sweeper 删除保留窗口以外的历史文件
type sweeper struct {
	dir      string
	base     string
	ext      string
	maxFiles int
	match    candidateMatcher

	readDir func(name string) ([]os.DirEntry, error)
	remove  func(name string) error
}

func newSweeper(dir, base, ext string, maxFiles int) sweeper {
	return sweeper{
		dir:      dir,
		base:     base,
		ext:      ext,
		maxFiles: maxFiles,
		match:    newCandidateMatcher(base, ext),
		readDir:  os.ReadDir,
		remove:   os.Remove,
	}
}

// plan 列举目录并把候选文件分为保留和过期两组，不删除任何文件
//
// 目录无法列举时返回 ErrSweepList。
func (s *sweeper) plan(now time.Time) (SweepReport, error) {
	entries, err := s.readDir(s.dir)
	if err != nil {
		return SweepReport{}, fmt.Errorf("%w: %s: %w", ErrSweepList, s.dir, err)
	}

	keep := RetentionSet(s.base, s.ext, s.maxFiles, now)

	var report SweepReport
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !s.match.match(name) {
			continue
		}
		if _, ok := keep[name]; ok {
			report.Kept = append(report.Kept, name)
		} else {
			report.Expired = append(report.Expired, name)
		}
	}
	return report, nil
}

// sweep 删除过期候选文件
//
// 列举失败时不删除任何文件，只上报一次告警。单个文件删除失败上报后继续处理其余文件；
// 文件已被其他进程删除（ENOENT）视为成功，不计入 Removed。
// removed 在每次删除成功后调用，可以为 nil。
func (s *sweeper) sweep(now time.Time, warn func(error), removed func(path string)) SweepReport {
	report, err := s.plan(now)
	if err != nil {
		warn(err)
		return report
	}

	for _, name := range report.Expired {
		path, err := xfile.SafeJoin(s.dir, name)
		if err != nil {
			warn(fmt.Errorf("%w: %s: %w", ErrSweepRemove, name, err))
			continue
		}
		if err := s.remove(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				warn(fmt.Errorf("%w: %s: %w", ErrSweepRemove, name, err))
			}
			continue
		}
		report.Removed = append(report.Removed, name)
		if removed != nil {
			removed(path)
		}
	}
	return report
}
