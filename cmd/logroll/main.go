// logroll 把标准输入按行写入按日轮转的日志文件。
//
// 用法:
//
//	logroll [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      配置文件路径（yaml/yml/json）
//	-f, --filename    日志文件路径，如 /var/log/app/app.log
//	-n, --max-files   保留的自然日数量（含今天，默认 10）
//	    --symlink     维护 {base}.{ext} 别名（默认开启）
//	    --local-time  按本地时区划分日期（默认 UTC）
//	    --create-dir  目录不存在时自动创建
//
// 命令:
//
//	write          从标准输入读取并写入，直到 EOF 或收到信号
//	sweep          立即执行一次保留清理
//	status         查看今天的活动文件、别名和保留情况
//	help           显示帮助信息
//
// 命令行参数覆盖配置文件中的同名配置。
//
// 退出码:
//
//	0: 命令执行成功
//	1: 运行时失败（写入失败、目录不可写、清理告警等）
//	2: 参数错误（缺少文件名、无效取值、未知命令等）
//
// 示例:
//
//	myapp | logroll -f /var/log/myapp/app.log write
//	myapp | logroll -c logroll.yaml write --format json --schedule @hourly
//	logroll -f /var/log/myapp/app.log -n 3 sweep --dry-run
//	logroll -c logroll.yaml status
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "logroll",
		Usage:   "按日轮转的日志文件写入器",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（yaml/yml/json）",
			},
			&cli.StringFlag{
				Name:    "filename",
				Aliases: []string{"f"},
				Usage:   "日志文件路径，实际文件为 {base}.{YYYY-MM-DD}.{ext}",
			},
			&cli.IntFlag{
				Name:    "max-files",
				Aliases: []string{"n"},
				Usage:   "保留的自然日数量（含今天）",
			},
			&cli.BoolFlag{
				Name:  "symlink",
				Usage: "维护指向当天文件的 {base}.{ext} 别名",
			},
			&cli.BoolFlag{
				Name:  "local-time",
				Usage: "按本地时区划分日期",
			},
			&cli.BoolFlag{
				Name:  "create-dir",
				Usage: "目录不存在时自动创建",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 退出码统一由 runApp 映射，禁止框架直接 os.Exit
		ExitErrHandler: func(_ context.Context, cmd *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(cmd.Root().ErrWriter, err)
			}
		},
	}
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	return runApp(ctx, createApp(), os.Args)
}

// runApp 运行 app 并把错误映射为退出码。
func runApp(ctx context.Context, app *cli.Command, args []string) int {
	errW := app.ErrWriter
	if errW == nil {
		errW = os.Stderr
		app.ErrWriter = errW
	}

	err := app.Run(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(errW, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		return 2
	}
	fmt.Fprintf(errW, "错误: %v\n", err)
	return 1
}

// isCLIUsageError 识别框架产生的参数错误（未知命令、未知 flag、无效取值）。
// 这些错误的详情已由框架或 ExitErrHandler 输出。
func isCLIUsageError(err error) bool {
	if _, ok := err.(cli.ExitCoder); ok {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{
		"flag provided but not defined",
		"flag needs an argument",
		"invalid value",
		"invalid boolean",
		"No help topic",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// usageError 参数错误，退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// exitError 命令已完成输出，只需设置非零退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// stdout 返回根命令的输出，测试中可替换。
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
