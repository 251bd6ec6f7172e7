package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/logroll/pkg/config/xconf"
	"github.com/omeyang/logroll/pkg/lifecycle/xrun"
	"github.com/omeyang/logroll/pkg/observability/xlog"
	"github.com/omeyang/logroll/pkg/observability/xrotate"
	"github.com/omeyang/logroll/pkg/util/xfile"
)

// 写入格式
const (
	formatRaw  = "raw"
	formatText = xlog.FormatText
	formatJSON = xlog.FormatJSON
)

// settings 配置文件结构，命令行参数在 loadSettings 中覆盖
type settings struct {
	Sink         sinkSettings         `koanf:"sink"`
	Log          logSettings          `koanf:"log"`
	Housekeeping housekeepingSettings `koanf:"housekeeping"`
}

type sinkSettings struct {
	Filename         string `koanf:"filename"`
	MaxFiles         int    `koanf:"max_files"`
	Symlink          bool   `koanf:"symlink"`
	LocalTime        bool   `koanf:"local_time"`
	FileMode         string `koanf:"file_mode"` // 八进制字符串，如 "0644"
	CheckPermissions bool   `koanf:"check_permissions"`
	CreateDir        bool   `koanf:"create_dir"`
}

type logSettings struct {
	// Level 最低输出级别，--watch 时随配置文件热更新
	Level string `koanf:"level"`
	// Format raw、text 或 json
	Format    string `koanf:"format"`
	Timestamp bool   `koanf:"timestamp"`
}

type housekeepingSettings struct {
	// Schedule 定时清理的 cron 表达式，为空不启用
	Schedule string `koanf:"schedule"`
}

func defaultSettings() settings {
	return settings{
		Sink: sinkSettings{
			MaxFiles:         xrotate.DefaultMaxFiles,
			Symlink:          xrotate.DefaultSymlink,
			LocalTime:        xrotate.DefaultLocalTime,
			FileMode:         fmt.Sprintf("%04o", xrotate.DefaultFileMode),
			CheckPermissions: true,
		},
		Log: logSettings{
			Level:     "info",
			Format:    formatRaw,
			Timestamp: true,
		},
	}
}

// loadSettings 合并默认值、配置文件和命令行参数
//
// 返回的 xconf.Config 在未指定 --config 时为 nil。
func loadSettings(cmd *cli.Command) (settings, xconf.Config, error) {
	s := defaultSettings()

	var cfg xconf.Config
	if path := cmd.String("config"); path != "" {
		c, err := xconf.New(path)
		if err != nil {
			return s, nil, &usageError{err: err}
		}
		if err := c.Unmarshal("", &s); err != nil {
			return s, nil, &usageError{err: err}
		}
		cfg = c
	}

	if cmd.IsSet("filename") {
		s.Sink.Filename = cmd.String("filename")
	}
	if cmd.IsSet("max-files") {
		s.Sink.MaxFiles = cmd.Int("max-files")
	}
	if cmd.IsSet("symlink") {
		s.Sink.Symlink = cmd.Bool("symlink")
	}
	if cmd.IsSet("local-time") {
		s.Sink.LocalTime = cmd.Bool("local-time")
	}
	if cmd.IsSet("create-dir") {
		s.Sink.CreateDir = cmd.Bool("create-dir")
	}

	if s.Sink.Filename == "" {
		return s, nil, usageErrorf("缺少日志文件路径，请使用 --filename 或配置 sink.filename")
	}
	return s, cfg, nil
}

// parseFileMode 解析八进制权限字符串
func parseFileMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 8, 32)
	if err != nil {
		return 0, usageErrorf("无效的 file_mode %q: %w", s, err)
	}
	return os.FileMode(v), nil
}

// location 返回日期划分和定时清理使用的时区
func (s sinkSettings) location() *time.Location {
	if s.LocalTime {
		return time.Local
	}
	return time.UTC
}

// openDaily 按配置创建轮转器
//
// 配置非法返回 *usageError，目录问题原样返回。
func openDaily(s sinkSettings, warnings io.Writer, extra ...xrotate.DailyOption) (*xrotate.Daily, error) {
	mode, err := parseFileMode(s.FileMode)
	if err != nil {
		return nil, err
	}

	opts := []xrotate.DailyOption{
		xrotate.WithMaxFiles(s.MaxFiles),
		xrotate.WithSymlink(s.Symlink),
		xrotate.WithLocalTime(s.LocalTime),
		xrotate.WithFileMode(mode),
		xrotate.WithCheckPermissions(s.CheckPermissions),
		xrotate.WithCreateDir(s.CreateDir),
		xrotate.WithOnError(func(err error) {
			fmt.Fprintf(warnings, "logroll: warning: %v\n", err)
		}),
	}
	d, err := xrotate.NewDaily(s.Filename, append(opts, extra...)...)
	if err != nil {
		if isConfigError(err) {
			return nil, &usageError{err: err}
		}
		return nil, err
	}
	return d, nil
}

func isConfigError(err error) bool {
	for _, target := range []error{
		xrotate.ErrEmptyFilename,
		xrotate.ErrInvalidBaseName,
		xrotate.ErrInvalidMaxFiles,
		xrotate.ErrInvalidFileMode,
		xfile.ErrInvalidPath,
		xfile.ErrPathTraversal,
		xfile.ErrNullByte,
		xrun.ErrInvalidSchedule,
		xlog.ErrInvalidLevel,
		xlog.ErrInvalidFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
