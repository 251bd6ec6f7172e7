package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/logroll/pkg/config/xconf"
	"github.com/omeyang/logroll/pkg/lifecycle/xrun"
	"github.com/omeyang/logroll/pkg/observability/xlog"
	"github.com/omeyang/logroll/pkg/observability/xmetrics"
	"github.com/omeyang/logroll/pkg/observability/xrotate"
)

// maxLineSize 单行上限，超过时 write 以错误退出
const maxLineSize = 1 << 20

// emitFunc 写入一条记录（不含换行符）
type emitFunc func(ctx context.Context, line []byte) error

// cmdWrite 读取标准输入直到 EOF 或 ctx 取消。
func cmdWrite(ctx context.Context, cmd *cli.Command) error {
	s, cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("format") {
		s.Log.Format = cmd.String("format")
	}
	if cmd.IsSet("schedule") {
		s.Housekeeping.Schedule = cmd.String("schedule")
	}
	switch s.Log.Format {
	case formatRaw, formatText, formatJSON:
	default:
		return usageErrorf("无效的 --format %q，可选 raw、text、json", s.Log.Format)
	}
	recordLevel, err := xlog.ParseLevel(cmd.String("level"))
	if err != nil {
		return &usageError{err: err}
	}
	if s.Housekeeping.Schedule != "" {
		if err := xrun.ValidateSchedule(s.Housekeeping.Schedule); err != nil {
			return &usageError{err: err}
		}
	}
	watch := cmd.Bool("watch")
	if watch && cfg == nil {
		return usageErrorf("--watch 需要同时指定 --config")
	}
	retries := cmd.Int("retries")
	if retries < 0 {
		return usageErrorf("--retries 不能为负数: %d", retries)
	}

	errW := stderr(cmd)
	metrics, err := xmetrics.NewRotateMetrics(xmetrics.WithSink(sinkName(s.Sink.Filename)))
	if err != nil {
		return err
	}
	d, err := openDaily(s.Sink, errW, xrotate.WithObserver(metrics))
	if err != nil {
		return err
	}
	defer d.Close()

	out := &retryWriter{
		w:        d,
		attempts: uint(retries) + 1,
		delay:    cmd.Duration("retry-delay"),
		ctx:      ctx,
		onRetry: func(n uint, err error) {
			fmt.Fprintf(errW, "logroll: write retry %d: %v\n", n+1, err)
		},
	}

	emit, logger, err := newEmitter(s.Log, recordLevel, out)
	if err != nil {
		return err
	}

	g, _ := xrun.NewGroup(ctx, xrun.WithName("logroll"))
	g.GoWithName("stdin", func(ctx context.Context) error {
		err := pumpLines(ctx, stdin(cmd), emit)
		if err == nil {
			// 输入结束，停止定时清理和配置监听
			g.Cancel(nil)
		}
		return err
	})

	if spec := s.Housekeeping.Schedule; spec != "" {
		g.GoWithName("housekeeping", xrun.Cron(spec, func(ctx context.Context) error {
			_, err := metrics.ObserveSweep(ctx, func(context.Context) (xrotate.SweepReport, error) {
				return d.Sweep()
			})
			return err
		},
			xrun.WithCronLocation(s.Sink.location()),
			xrun.WithCronErrorHandler(func(err error) {
				fmt.Fprintf(errW, "logroll: scheduled sweep: %v\n", err)
			}),
		))
	}

	if watch {
		w, err := xconf.Watch(cfg, levelReloader(logger, errW))
		if err != nil {
			return err
		}
		g.GoWithName("config-watch", w.Run)
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newEmitter 按格式创建记录写入函数
//
// raw 格式原样写入并追加换行符，返回的 Leveler 为 nil。
// text/json 格式每行作为一条 level 级别的 xlog 记录，最低级别取 cfg.Level。
func newEmitter(cfg logSettings, level xlog.Level, out io.Writer) (emitFunc, xlog.Leveler, error) {
	if cfg.Format == formatRaw {
		return func(_ context.Context, line []byte) error {
			buf := make([]byte, 0, len(line)+1)
			buf = append(buf, line...)
			buf = append(buf, '\n')
			_, err := out.Write(buf)
			return err
		}, nil, nil
	}

	// 仅在 emit 所在 goroutine 中同步写入
	var lastErr error
	logger, _, err := xlog.New().
		SetOutput(out).
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetTimestamp(cfg.Timestamp).
		SetOnError(func(err error) { lastErr = err }).
		Build()
	if err != nil {
		return nil, nil, &usageError{err: err}
	}

	return func(ctx context.Context, line []byte) error {
		logger.Log(ctx, level, string(line))
		err := lastErr
		lastErr = nil
		return err
	}, logger, nil
}

// levelReloader 配置变化时更新最低日志级别
//
// raw 格式下 leveler 为 nil，只报告配置错误。
func levelReloader(leveler xlog.Leveler, errW io.Writer) xconf.WatchCallback {
	return func(cfg xconf.Config, err error) {
		if err != nil {
			fmt.Fprintf(errW, "logroll: config reload: %v\n", err)
			return
		}
		if leveler == nil {
			return
		}
		var ls logSettings
		if err := cfg.Unmarshal("log", &ls); err != nil {
			fmt.Fprintf(errW, "logroll: config reload: %v\n", err)
			return
		}
		if ls.Level == "" {
			return
		}
		lvl, err := xlog.ParseLevel(ls.Level)
		if err != nil {
			fmt.Fprintf(errW, "logroll: config reload: %v\n", err)
			return
		}
		leveler.SetLevel(lvl)
	}
}

// pumpLines 逐行读取 r 并调用 emit
//
// EOF 返回 nil；ctx 取消时立即返回 nil，不等待阻塞中的读取。
func pumpLines(ctx context.Context, r io.Reader, emit emitFunc) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
					return nil
				case <-ctx.Done():
					return nil
				}
			}
			if err := emit(ctx, line); err != nil {
				return err
			}
		}
	}
}

// retryWriter 写入失败时按固定间隔重试整条记录
//
// 已写入部分字节的失败不重试，避免记录重复。
type retryWriter struct {
	w        io.Writer
	attempts uint
	delay    time.Duration
	ctx      context.Context
	onRetry  func(n uint, err error)
}

func (rw *retryWriter) Write(p []byte) (int, error) {
	if rw.attempts <= 1 {
		return rw.w.Write(p)
	}

	var n int
	err := retry.New(
		retry.Context(rw.ctx),
		retry.Attempts(rw.attempts),
		retry.Delay(rw.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(rw.onRetry),
	).Do(func() error {
		var err error
		n, err = rw.w.Write(p)
		if err != nil && n > 0 {
			return retry.Unrecoverable(err)
		}
		return err
	})
	return n, err
}

