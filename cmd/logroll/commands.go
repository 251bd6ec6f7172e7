package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/logroll/pkg/observability/xmetrics"
	"github.com/omeyang/logroll/pkg/observability/xrotate"
)

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createWriteCommand(),
		createSweepCommand(),
		createStatusCommand(),
	}
}

// createWriteCommand 创建 write 子命令。
func createWriteCommand() *cli.Command {
	return &cli.Command{
		Name:    "write",
		Aliases: []string{"w"},
		Usage:   "从标准输入逐行读取并写入日志文件",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "记录格式: raw（原样写入）、text 或 json",
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "text/json 格式下每条记录的级别",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "schedule",
				Usage: "定时清理的 cron 表达式，如 @hourly",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "配置文件变化时热更新 log.level（需要 --config）",
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "单条记录写入失败后的重试次数",
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "重试间隔",
				Value: defaultRetryDelay,
			},
		},
		Action: cmdWrite,
	}
}

// createSweepCommand 创建 sweep 子命令。
func createSweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "立即执行一次保留清理",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "只列出将被删除的文件",
			},
		},
		Action: cmdSweep,
	}
}

// createStatusCommand 创建 status 子命令。
func createStatusCommand() *cli.Command {
	return &cli.Command{
		Name:    "status",
		Aliases: []string{"s"},
		Usage:   "查看今天的活动文件、别名和保留情况",
		Action:  cmdStatus,
	}
}

// cmdSweep 执行或预演一次清理。
// 有告警时返回退出码 1，已删除的文件仍会输出。
func cmdSweep(ctx context.Context, cmd *cli.Command) error {
	s, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	out, errW := stdout(cmd), stderr(cmd)

	metrics, err := xmetrics.NewRotateMetrics(xmetrics.WithSink(sinkName(s.Sink.Filename)))
	if err != nil {
		return err
	}
	d, err := openDaily(s.Sink, errW, xrotate.WithObserver(metrics))
	if err != nil {
		return err
	}
	defer d.Close()

	if cmd.Bool("dry-run") {
		report, err := d.Plan()
		if err != nil {
			return err
		}
		printList(out, "将删除", report.Expired)
		fmt.Fprintf(out, "保留: %d 个文件\n", len(report.Kept))
		return nil
	}

	report, err := metrics.ObserveSweep(ctx, func(context.Context) (xrotate.SweepReport, error) {
		return d.Sweep()
	})
	printList(out, "已删除", report.Removed)
	fmt.Fprintf(out, "保留: %d 个文件\n", len(report.Kept))
	if err != nil {
		fmt.Fprintf(errW, "清理告警: %v\n", err)
		return &exitError{code: 1}
	}
	return nil
}

// cmdStatus 输出当前状态，不修改任何文件。
func cmdStatus(_ context.Context, cmd *cli.Command) error {
	s, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	out := stdout(cmd)

	// status 只读，不要求目录可写
	s.Sink.CheckPermissions = false
	s.Sink.CreateDir = false
	d, err := openDaily(s.Sink, stderr(cmd))
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Fprintf(out, "活动文件: %s\n", d.CurrentPath())
	if s.Sink.Symlink {
		target, err := d.AliasTarget()
		switch {
		case err != nil:
			fmt.Fprintf(out, "别名: %s (%v)\n", d.AliasPath(), err)
		case target == "":
			fmt.Fprintf(out, "别名: %s (不存在)\n", d.AliasPath())
		default:
			fmt.Fprintf(out, "别名: %s -> %s\n", d.AliasPath(), target)
		}
	}

	report, err := d.Plan()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "保留窗口: %d 天 (%s)\n", s.Sink.MaxFiles, s.Sink.location())
	printList(out, "保留", report.Kept)
	printList(out, "过期", report.Expired)
	return nil
}

func printList(w io.Writer, title string, names []string) {
	fmt.Fprintf(w, "%s: %d\n", title, len(names))
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", filepath.Base(name))
	}
}

// sinkName 指标中的 sink 名称，取日志文件名
func sinkName(filename string) string {
	return filepath.Base(filename)
}

// setupSignalHandler 设置信号处理。
// 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}

// defaultRetryDelay 写入重试默认间隔
const defaultRetryDelay = 100 * time.Millisecond
