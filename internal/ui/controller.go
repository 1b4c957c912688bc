// internal/ui/controller.go

package ui

import (
	"time"

	"restclient/internal/adapter"
	"restclient/internal/codec"
	"restclient/internal/compte"
	"restclient/internal/i18n"
	"restclient/internal/repository"
)

// Level 為通知等級。
type Level int

const (
	Info Level = iota
	Error
)

// Notifier 顯示短暫、可關閉的通知（相當於 toast）。
type Notifier interface {
	Notify(level Level, msg string)
}

// Forms 取代對話框：收集輸入後呼叫 submit / confirm；取消時不呼叫即可。
type Forms interface {
	NewAccount(submit func(balanceInput string, t compte.Type))
	EditAccount(a compte.Account, submit func(balanceInput string, t compte.Type))
	ConfirmDelete(a compte.Account, confirm func())
}

// Controller 為無畫面版的主控制器。
// 所有方法（含回呼）都在 Loop 上執行，因此內部狀態不需加鎖。
type Controller struct {
	repo     *repository.Repository
	adapter  *adapter.Adapter
	notifier Notifier
	forms    Forms
	msgs     *i18n.Catalog
	now      func() time.Time

	loading  repository.Canceler
	inflight map[repository.Canceler]struct{}
	closed   bool
}

// NewController 建立在 loop 上執行的 Controller；repo 的回呼一律改由 loop 派送。
func NewController(loop *Loop, repo *repository.Repository, r adapter.Renderer, n Notifier, f Forms, msgs *i18n.Catalog) *Controller {
	c := &Controller{
		repo:     repo.Dispatching(loop),
		notifier: n,
		forms:    f,
		msgs:     msgs,
		now:      time.Now,
		inflight: make(map[repository.Canceler]struct{}),
	}
	c.adapter = adapter.New(r, c)
	return c
}

// Adapter 回傳清單 Adapter（列上的動作會回到本 Controller）。
func (c *Controller) Adapter() *adapter.Adapter { return c.adapter }

// Format 回傳目前的主體格式。
func (c *Controller) Format() codec.Format { return c.repo.Format() }

// Start 初次載入清單。
func (c *Controller) Start() { c.load() }

// Reload 重新載入清單。
func (c *Controller) Reload() { c.load() }

// SetFormat 切換格式：建立新的 Repository 並重新載入。
func (c *Controller) SetFormat(f codec.Format) {
	if c.closed {
		return
	}
	c.repo = c.repo.WithFormat(f)
	c.notify(Info, c.msgs.T("format_changed", string(f)))
	c.load()
}

// RequestAdd 對應新增按鈕：開啟新增表單。
func (c *Controller) RequestAdd() {
	if c.forms == nil {
		return
	}
	c.forms.NewAccount(func(in string, t compte.Type) { c.Add(in, t) })
}

// OnUpdateRequested 實作 adapter.Listener：開啟預填的修改表單。
func (c *Controller) OnUpdateRequested(a compte.Account) {
	if c.forms == nil {
		return
	}
	c.forms.EditAccount(a, func(in string, t compte.Type) { c.Update(a, in, t) })
}

// OnDeleteRequested 實作 adapter.Listener：確認後刪除。
func (c *Controller) OnDeleteRequested(a compte.Account) {
	if c.forms == nil {
		return
	}
	c.forms.ConfirmDelete(a, func() { c.Delete(a) })
}

// Add 驗證輸入、以本地日期建立帳戶；成功後重新載入。
func (c *Controller) Add(balanceInput string, t compte.Type) {
	if c.closed {
		return
	}
	bal, err := compte.ParseBalance(balanceInput)
	if err != nil {
		c.notify(Error, c.msgs.T("invalid_balance", err.Error()))
		return
	}
	a := compte.New(bal, t, c.now())

	var call *repository.Call[compte.Account]
	call = c.repo.CreateAsync(a, func(res repository.Result[compte.Account]) {
		c.forget(call)
		c.afterMutation(res.Err, "added", "add_failed")
	})
	c.track(call)
}

// Update 以表單輸入取代 solde 與 type；成功後重新載入。
func (c *Controller) Update(a compte.Account, balanceInput string, t compte.Type) {
	if c.closed {
		return
	}
	bal, err := compte.ParseBalance(balanceInput)
	if err != nil {
		c.notify(Error, c.msgs.T("invalid_balance", err.Error()))
		return
	}
	upd := a
	upd.Balance = bal
	upd.Type = t

	var call *repository.Call[compte.Account]
	call = c.repo.UpdateAsync(a.IDValue(), upd, func(res repository.Result[compte.Account]) {
		c.forget(call)
		c.afterMutation(res.Err, "updated", "update_failed")
	})
	c.track(call)
}

// Delete 刪除帳戶；成功後重新載入。
func (c *Controller) Delete(a compte.Account) {
	if c.closed {
		return
	}
	var call *repository.Call[struct{}]
	call = c.repo.DeleteAsync(a.IDValue(), func(res repository.Result[struct{}]) {
		c.forget(call)
		c.afterMutation(res.Err, "deleted", "delete_failed")
	})
	c.track(call)
}

// Close 取消所有進行中的請求；之後的操作與回呼都會被忽略。
func (c *Controller) Close() {
	c.closed = true
	for call := range c.inflight {
		call.Cancel()
	}
	c.inflight = make(map[repository.Canceler]struct{})
	c.loading = nil
}

// load 取消上一個尚未完成的載入，再發出新的 GET /comptes。
func (c *Controller) load() {
	if c.closed {
		return
	}
	if c.loading != nil {
		c.loading.Cancel()
		c.forget(c.loading)
	}
	var call *repository.Call[[]compte.Account]
	call = c.repo.ListAsync(func(res repository.Result[[]compte.Account]) {
		c.forget(call)
		if c.loading == repository.Canceler(call) {
			c.loading = nil
		}
		if !res.OK() {
			key := "load_failed"
			if repository.KindOf(res.Err) == repository.NetworkFailure {
				key = "network_error"
			}
			c.notify(Error, c.msgs.T(key, res.Err.Error()))
			return
		}
		c.adapter.ReplaceAll(res.Value)
	})
	c.loading = call
	c.track(call)
}

// afterMutation：失敗時通知且清單不變；成功時通知並重新載入完整清單。
func (c *Controller) afterMutation(err error, okKey, failKey string) {
	if err != nil {
		c.notify(Error, c.msgs.T(failKey, err.Error()))
		return
	}
	c.notify(Info, c.msgs.T(okKey))
	c.load()
}

func (c *Controller) track(call repository.Canceler) { c.inflight[call] = struct{}{} }

func (c *Controller) forget(call repository.Canceler) { delete(c.inflight, call) }

func (c *Controller) notify(level Level, msg string) {
	if c.notifier != nil {
		c.notifier.Notify(level, msg)
	}
}
