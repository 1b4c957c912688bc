// internal/ui/controller_test.go
//
// 以 httptest 參考伺服器與真正的 Loop 驗證 Controller 的載入、新增、修改、
// 刪除流程、格式切換與取消。
package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"restclient/internal/adapter"
	"restclient/internal/bank"
	"restclient/internal/codec"
	"restclient/internal/compte"
	"restclient/internal/i18n"
	"restclient/internal/repository"
	"restclient/internal/server"
)

type note struct {
	level Level
	msg   string
}

type chanRenderer chan []adapter.Row

func (r chanRenderer) Render(rows []adapter.Row) { r <- rows }

type chanNotifier chan note

func (n chanNotifier) Notify(level Level, msg string) { n <- note{level, msg} }

// scriptedForms 立即以預設值送出表單。
type scriptedForms struct {
	balance string
	typ     compte.Type
	confirm bool
}

func (f *scriptedForms) NewAccount(submit func(string, compte.Type)) { submit(f.balance, f.typ) }

func (f *scriptedForms) EditAccount(_ compte.Account, submit func(string, compte.Type)) {
	submit(f.balance, f.typ)
}

func (f *scriptedForms) ConfirmDelete(_ compte.Account, confirm func()) {
	if f.confirm {
		confirm()
	}
}

type fixture struct {
	loop    *Loop
	ctrl    *Controller
	bank    *bank.Bank
	renders chanRenderer
	notes   chanNotifier
	forms   *scriptedForms
}

func newFixture(t *testing.T, h func(http.Handler) http.Handler) *fixture {
	t.Helper()
	b := bank.NewBank()
	var handler http.Handler = server.NewServer(b, nil).Router()
	if h != nil {
		handler = h(handler)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)

	repo, err := repository.New(ts.URL, codec.JSON, repository.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		loop:    loop,
		bank:    b,
		renders: make(chanRenderer, 16),
		notes:   make(chanNotifier, 16),
		forms:   &scriptedForms{},
	}
	f.ctrl = NewController(loop, repo, f.renders, f.notes, f.forms, i18n.MustLoad("fr"))
	return f
}

func (f *fixture) seed(t *testing.T, bal string, typ compte.Type) {
	t.Helper()
	a := compte.Account{Balance: decimal.RequireFromString(bal), Type: typ, CreatedDate: "2024-03-01"}
	if _, err := f.bank.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) run(fn func()) { f.loop.Sync(fn) }

func waitRender(t *testing.T, f *fixture) []adapter.Row {
	t.Helper()
	select {
	case rows := <-f.renders:
		return rows
	case n := <-f.notes:
		t.Fatalf("unexpected notification: %+v", n)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for render")
	}
	return nil
}

func waitNote(t *testing.T, f *fixture) note {
	t.Helper()
	select {
	case n := <-f.notes:
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
	return note{}
}

func TestStartRendersServerList(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "100", compte.Courant)
	f.seed(t, "25.5", compte.Epargne)

	f.run(f.ctrl.Start)
	rows := waitRender(t, f)
	if len(rows) != 2 || rows[1].Balance != "25.50" || rows[1].Type != "EPARGNE" {
		t.Fatalf("rows=%+v", rows)
	}
}

// TestAddNotifiesThenReloads：成功新增後先通知，再以完整清單重繪。
func TestAddNotifiesThenReloads(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "100", compte.Courant)
	f.ctrl.now = func() time.Time { return time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local) }

	f.forms.balance, f.forms.typ = "42,5", compte.Epargne
	f.run(f.ctrl.RequestAdd)

	if n := waitNote(t, f); n.level != Info || n.msg != "Compte ajouté avec succès !" {
		t.Fatalf("note=%+v", n)
	}
	rows := waitRender(t, f)
	if len(rows) != 2 {
		t.Fatalf("rows=%+v", rows)
	}
	want := adapter.Row{ID: "2", Balance: "42.50", Type: "EPARGNE", Date: "2024-05-06"}
	if rows[1] != want {
		t.Fatalf("row=%+v want %+v", rows[1], want)
	}
}

// TestInvalidBalanceSendsNothing：空白或非數字的餘額只會通知錯誤，不發出請求。
func TestInvalidBalanceSendsNothing(t *testing.T) {
	f := newFixture(t, nil)
	for _, in := range []string{"", "abc"} {
		f.run(func() { f.ctrl.Add(in, compte.Courant) })
		if n := waitNote(t, f); n.level != Error || !strings.HasPrefix(n.msg, "Solde invalide") {
			t.Fatalf("input %q note=%+v", in, n)
		}
	}
	list, _ := f.bank.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("server got %d accounts", len(list))
	}
}

func TestUpdateFromRow(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "100", compte.Courant)
	f.run(f.ctrl.Start)
	waitRender(t, f)

	f.forms.balance, f.forms.typ = "50", compte.Epargne
	f.run(func() {
		if err := f.ctrl.Adapter().RequestUpdate(0); err != nil {
			t.Error(err)
		}
	})
	if n := waitNote(t, f); n.level != Info || n.msg != "Compte modifié !" {
		t.Fatalf("note=%+v", n)
	}
	rows := waitRender(t, f)
	want := adapter.Row{ID: "1", Balance: "50.00", Type: "EPARGNE", Date: "2024-03-01"}
	if len(rows) != 1 || rows[0] != want {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestDeleteFromRow(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "100", compte.Courant)
	f.seed(t, "200", compte.Epargne)
	f.run(f.ctrl.Start)
	waitRender(t, f)

	// 未確認時不刪除
	f.run(func() { _ = f.ctrl.Adapter().RequestDelete(0) })

	f.forms.confirm = true
	f.run(func() { _ = f.ctrl.Adapter().RequestDelete(0) })
	if n := waitNote(t, f); n.msg != "Compte supprimé" {
		t.Fatalf("note=%+v", n)
	}
	rows := waitRender(t, f)
	if len(rows) != 1 || rows[0].ID != "2" {
		t.Fatalf("rows=%+v", rows)
	}
}

// TestMutationFailureKeepsList：伺服器拒絕時只通知錯誤，清單不重繪。
func TestMutationFailureKeepsList(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "100", compte.Courant)
	f.run(f.ctrl.Start)
	waitRender(t, f)

	ghost := compte.Account{ID: compte.IDPtr(99), Balance: decimal.NewFromInt(1), Type: compte.Courant}
	f.run(func() { f.ctrl.Delete(ghost) })
	n := waitNote(t, f)
	if n.level != Error || !strings.HasPrefix(n.msg, "Erreur suppression") {
		t.Fatalf("note=%+v", n)
	}
	select {
	case rows := <-f.renders:
		t.Fatalf("unexpected render %+v", rows)
	case <-time.After(100 * time.Millisecond):
	}
	if f.ctrl.Adapter().Len() != 1 {
		t.Fatalf("adapter len=%d", f.ctrl.Adapter().Len())
	}
}

func TestSetFormatReloads(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "100", compte.Courant)

	f.run(func() { f.ctrl.SetFormat(codec.XML) })
	if n := waitNote(t, f); n.msg != "Format changé en : XML" {
		t.Fatalf("note=%+v", n)
	}
	rows := waitRender(t, f)
	if len(rows) != 1 || rows[0].Balance != "100.00" {
		t.Fatalf("rows=%+v", rows)
	}
	if f.ctrl.Format() != codec.XML {
		t.Fatalf("format=%s", f.ctrl.Format())
	}
}

func TestLoadFailureNotifies(t *testing.T) {
	f := newFixture(t, func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
	})
	f.run(f.ctrl.Start)
	n := waitNote(t, f)
	if n.level != Error || !strings.HasPrefix(n.msg, "Erreur lors du chargement") {
		t.Fatalf("note=%+v", n)
	}
}

// TestCloseSuppressesPendingLoad：Close 之後，仍在進行中的請求不會觸發重繪。
func TestCloseSuppressesPendingLoad(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
			next.ServeHTTP(w, r)
		})
	})
	f.seed(t, "100", compte.Courant)

	f.run(f.ctrl.Start)
	f.run(f.ctrl.Close)
	close(release)

	select {
	case rows := <-f.renders:
		t.Fatalf("render after close: %+v", rows)
	case n := <-f.notes:
		t.Fatalf("notification after close: %+v", n)
	case <-time.After(200 * time.Millisecond):
	}
}

// TestReloadCancelsPendingLoad：新的載入會取消上一個仍在進行中的 GET /comptes，
// 只有最後一次載入會重繪。
func TestReloadCancelsPendingLoad(t *testing.T) {
	arrived := make(chan struct{})
	firstCanceled := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	f := newFixture(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && first.CompareAndSwap(false, true) {
				close(arrived)
				select {
				case <-r.Context().Done():
					close(firstCanceled)
				case <-release:
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	t.Cleanup(func() { close(release) })
	f.seed(t, "100", compte.Courant)

	f.run(f.ctrl.Start)
	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("first load never reached the server")
	}

	f.run(f.ctrl.Reload)
	select {
	case <-firstCanceled:
	case <-time.After(5 * time.Second):
		t.Fatal("first request was not cancelled")
	}

	rows := waitRender(t, f)
	if len(rows) != 1 || rows[0].Balance != "100.00" {
		t.Fatalf("rows=%+v", rows)
	}
	select {
	case rows := <-f.renders:
		t.Fatalf("second render: %+v", rows)
	case n := <-f.notes:
		t.Fatalf("unexpected notification: %+v", n)
	case <-time.After(200 * time.Millisecond):
	}
}

// TestControllerBindsLoopDispatcher：不論傳入的 Repository 用哪種 Dispatcher，
// 回呼都在 Loop 上執行，切換格式後也一樣。
func TestControllerBindsLoopDispatcher(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "100", compte.Courant)

	want := repository.Dispatcher(f.loop)
	if got := f.ctrl.repo.Dispatcher(); got != want {
		t.Fatalf("dispatcher=%T, want loop", got)
	}
	f.run(func() { f.ctrl.SetFormat(codec.XML) })
	waitNote(t, f)
	waitRender(t, f)
	if got := f.ctrl.repo.Dispatcher(); got != want {
		t.Fatalf("dispatcher after SetFormat=%T, want loop", got)
	}
}
