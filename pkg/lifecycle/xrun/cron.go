package xrun

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// CronOption Cron 服务配置选项
type CronOption func(*cronOptions)

type cronOptions struct {
	location *time.Location
	onError  func(error)
}

// WithCronLocation 设置调度时区，默认 time.Local，nil 被忽略
func WithCronLocation(loc *time.Location) CronOption {
	return func(o *cronOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithCronErrorHandler 设置单次任务失败的回调，默认丢弃
func WithCronErrorHandler(fn func(error)) CronOption {
	return func(o *cronOptions) {
		o.onError = fn
	}
}

// ValidateSchedule 检查 spec 是否为合法的标准 cron 表达式
//
// 支持 5 段表达式和 @hourly、@daily、@every 1h 等描述符。
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, spec, err)
	}
	return nil
}

// Cron 返回按 spec 周期执行 job 的服务函数
//
// 上一次执行未结束时跳过本次触发。ctx 取消后停止调度，
// 等待执行中的 job 返回后再返回 ctx.Err()。
// job 返回的错误交给 WithCronErrorHandler，不终止服务。
//
//	g.Go(xrun.Cron("@hourly", func(ctx context.Context) error {
//	    _, err := rotator.Sweep()
//	    return err
//	}))
func Cron(spec string, job func(ctx context.Context) error, opts ...CronOption) func(ctx context.Context) error {
	options := &cronOptions{location: time.Local}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	return func(ctx context.Context) error {
		if job == nil {
			return ErrNilFunc
		}
		schedule, err := cron.ParseStandard(spec)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, spec, err)
		}

		c := cron.New(
			cron.WithLocation(options.location),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		)
		c.Schedule(schedule, cron.FuncJob(func() {
			if err := job(ctx); err != nil && options.onError != nil {
				options.onError(err)
			}
		}))

		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		return ctx.Err()
	}
}
