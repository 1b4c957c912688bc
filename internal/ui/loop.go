// internal/ui/loop.go
//
// Package ui 為無畫面框架的展示層：Loop 扮演「主執行緒」，
// Controller 負責把使用者動作轉為 Repository 呼叫，並在成功後重新載入清單。
package ui

import (
	"context"
	"sync"
)

// Loop 以單一 goroutine 依序執行投遞的函式，實作 repository.Dispatcher。
// 佇列無上限，因此在 loop 內再次 Dispatch 不會阻塞。
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}
	quit    chan struct{}
	once    sync.Once
}

// NewLoop 建立尚未執行的 Loop；需另行呼叫 Run。
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1), quit: make(chan struct{})}
}

// Dispatch 將 fn 排入佇列；Loop 停止後投遞的函式會被丟棄。
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Sync 投遞 fn 並等待其執行完畢；不可在 loop 內呼叫。
// Loop 已停止時回傳 false。
func (l *Loop) Sync(fn func()) bool {
	done := make(chan struct{})
	l.Dispatch(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return true
	case <-l.quit:
		return false
	}
}

// Run 在呼叫端 goroutine 執行佇列，直到 ctx 結束或 Stop。
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-l.wake:
		case <-l.quit:
			return nil
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		}
	}
}

// Stop 停止 Loop 並丟棄尚未執行的函式；可重複呼叫。
func (l *Loop) Stop() {
	l.once.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.queue = nil
		l.mu.Unlock()
		close(l.quit)
	})
}
