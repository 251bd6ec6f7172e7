package xrun

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/logroll/pkg/observability/xlog"
)

// Group 基于 errgroup + context 管理多个服务的并发运行和协调关闭
//
// 任一服务返回错误或 context 被取消时，所有服务都会收到取消信号。
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 context 在任一服务失败或 Cancel 时取消
//
// nil ctx 视为 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)

	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 启动一个 goroutine 执行 fn，fn 返回非 nil 错误时取消其他服务
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，但记录服务的启动和退出
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		g.debug("service starting", slog.String("service", name))

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.warn("service exited with error", slog.String("service", name), xlog.Err(err))
		} else {
			g.debug("service stopped", slog.String("service", name))
		}
		return err
	})
}

// Wait 等待所有服务退出
//
// 返回第一个非 nil 错误。Group 被取消时 context.Canceled 被过滤：
// 有显式原因（Cancel(cause)、信号）时返回该原因，否则返回 nil。
// 服务内部自行产生的 context.Canceled 原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.debug("all services stopped")

	cancelled := g.causeCtx.Err() != nil
	if errors.Is(err, context.Canceled) && !cancelled {
		return err
	}
	if (err == nil || errors.Is(err, context.Canceled)) && cancelled {
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return nil
	}
	return err
}

// Cancel 取消所有服务，cause 作为 Wait 的返回值
//
// cause 不应包装 context.Canceled，否则会被当作普通取消过滤掉。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context
func (g *Group) Context() context.Context {
	return g.ctx
}

func (g *Group) debug(msg string, attrs ...slog.Attr) {
	if g.opts.logger != nil {
		g.opts.logger.Debug(g.ctx, msg, append(attrs, slog.String("group", g.opts.name))...)
	}
}

func (g *Group) warn(msg string, attrs ...slog.Attr) {
	if g.opts.logger != nil {
		g.opts.logger.Warn(g.ctx, msg, append(attrs, slog.String("group", g.opts.name))...)
	}
}

// Run 监听信号并运行服务
//
// 收到 DefaultSignals 中的信号时取消所有服务，返回 *SignalError。
func Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, services...)
}

// RunWithOptions 与 Run 相同，但支持配置选项
func RunWithOptions(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)

	if !g.opts.noSignalHandler {
		g.Go(g.signalService())
	}
	for _, svc := range services {
		g.Go(svc)
	}
	return g.Wait()
}
