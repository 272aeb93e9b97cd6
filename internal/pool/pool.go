// Package pool 提供有界并发执行器：limit 个 worker 从共享队列取任务。
package pool

import (
	"context"
	"sync"
)

// Run 用 limit 个 worker 处理 items，返回结果切片。
//
// 约束：
// - 每个 item 恰好被处理一次（队列是 channel，取出即移除）
// - 结果按完成顺序追加，不保证与输入顺序一致；需要对应关系时由 R 自带标识
// - ctx 结束后，尚未开始的 item 不再处理；正在执行的 fn 自行观察 ctx
// - limit < 1 视为 1；limit 不超过 len(items)
func Run[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) R) []R {
	if len(items) == 0 {
		return []R{}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	jobs := make(chan T)
	results := make(chan R, len(items))

	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				results <- fn(ctx, it)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, it := range items {
			select {
			case jobs <- it:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]R, 0, len(items))
	for r := range results {
		out = append(out, r)
	}
	return out
}
