package repository

// Dispatcher 將非同步呼叫的結果送回呼叫端的執行緒（例如 UI loop）。
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc 讓普通函式實作 Dispatcher。
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Immediate 直接在背景 goroutine 上執行回呼。
var Immediate Dispatcher = DispatcherFunc(func(fn func()) { fn() })
