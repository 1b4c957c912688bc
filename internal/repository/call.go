// internal/repository/call.go
//
// 非同步呼叫的控制代碼：每個操作在獨立 goroutine 執行，
// 完成後透過 Dispatcher 回呼；取消後的呼叫永遠不會回呼。

package repository

import (
	"context"
	"sync/atomic"
)

// Result 為非同步操作的結果：成功時 Err 為 nil。
type Result[T any] struct {
	Value T
	Err   error
}

// OK 回報是否成功。
func (r Result[T]) OK() bool { return r.Err == nil }

// Canceler 為任何可取消的呼叫。
type Canceler interface {
	Cancel()
}

// Call 為單一非同步操作的控制代碼。
type Call[T any] struct {
	cancel   context.CancelFunc
	canceled atomic.Bool
	done     chan struct{}
	res      Result[T]
}

// Cancel 取消進行中的請求並抑制回呼；可重複呼叫。
func (c *Call[T]) Cancel() {
	c.canceled.Store(true)
	c.cancel()
}

// Canceled 回報是否已呼叫 Cancel。
func (c *Call[T]) Canceled() bool { return c.canceled.Load() }

// Done 在請求結束（成功、失敗或取消）後關閉。
func (c *Call[T]) Done() <-chan struct{} { return c.done }

// Wait 阻塞直到請求結束並回傳結果。
func (c *Call[T]) Wait() Result[T] {
	<-c.done
	return c.res
}

// start 在新的 goroutine 執行 fn，完成後經由 d 呼叫 cb（cb 可為 nil）。
func start[T any](d Dispatcher, fn func(ctx context.Context) (T, error), cb func(Result[T])) *Call[T] {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Call[T]{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer cancel()
		v, err := fn(ctx)
		c.res = Result[T]{Value: v, Err: err}
		close(c.done)
		if cb == nil || c.canceled.Load() {
			return
		}
		d.Dispatch(func() {
			// 送達前被取消（例如畫面已關閉）則丟棄
			if c.canceled.Load() {
				return
			}
			cb(c.res)
		})
	}()
	return c
}
