// Package xrun 提供基于 errgroup + context 的进程生命周期管理。
//
// # 核心概念
//
// 当任一服务返回错误或收到终止信号时，共享的 context 被取消，
// 所有服务应监听 ctx.Done() 并退出。
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithName("logroll")},
//	    pumpStdin,
//	    xrun.Cron("@hourly", sweep),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 信号退出
//	}
//
// # 退出原因
//
// [Group.Wait] 过滤普通的 context.Canceled，但保留通过 [Group.Cancel] 设置的
// 显式原因（如 [SignalError]），调用方可据此区分正常结束、信号退出和服务失败。
//
// # 定时任务
//
// [Cron] 把 robfig/cron 调度器包装为服务函数，ctx 取消后等待执行中的任务结束再返回。
// 单次任务失败不会终止 Group，错误交给 [WithCronErrorHandler]。
//
// [errgroup]: https://pkg.go.dev/golang.org/x/sync/errgroup
package xrun
