// internal/bank/bank_test.go
//
// Bank（in-memory Store）的單元測試：建立、查詢、更新、刪除、排序、併發與快照。

package bank

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"restclient/internal/compte"
)

var ctx = context.Background()

func acct(bal string, t compte.Type, date string) compte.Account {
	return compte.Account{Balance: decimal.RequireFromString(bal), Type: t, CreatedDate: date}
}

// get 為小工具：安全取出帳戶狀態。
func get(t *testing.T, b *Bank, id int64) compte.Account {
	t.Helper()
	a, err := b.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get(%d) err=%v", id, err)
	}
	return a
}

// TestCreateAndListGet 驗證帳戶建立、查詢與依 id 排序的清單。
func TestCreateAndListGet(t *testing.T) {
	b := NewBank()
	a1, err := b.Create(ctx, acct("1000", compte.Courant, "2024-01-01"))
	if err != nil {
		t.Fatal(err)
	}
	a2, err := b.Create(ctx, acct("500", compte.Epargne, "2024-01-02"))
	if err != nil {
		t.Fatal(err)
	}
	if !a1.HasID() || !a2.HasID() || a1.IDValue() == a2.IDValue() {
		t.Fatalf("ids should be unique and present: %v %v", a1.ID, a2.ID)
	}
	all, _ := b.List(ctx)
	if len(all) != 2 || all[0].IDValue() != a1.IDValue() || all[1].IDValue() != a2.IDValue() {
		t.Fatalf("List=%+v want ordered by id", all)
	}
	g1 := get(t, b, a1.IDValue())
	if !g1.Equal(a1) {
		t.Fatalf("got=%+v want=%+v", g1, a1)
	}
}

// TestCreateOverridesClientID 驗證伺服器忽略呼叫端送來的 id。
func TestCreateOverridesClientID(t *testing.T) {
	b := NewBank()
	in := acct("10", compte.Courant, "2024-01-01").WithID(99)
	got, err := b.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if got.IDValue() != 1 {
		t.Fatalf("id=%d want 1", got.IDValue())
	}
	if _, err := b.Get(ctx, 99); !errors.Is(err, compte.ErrNotFound) {
		t.Fatalf("client id must not be stored, err=%v", err)
	}
}

func TestCreateStampsMissingDate(t *testing.T) {
	b := NewBank()
	b.now = func() time.Time { return time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local) }
	got, err := b.Create(ctx, compte.Account{Balance: decimal.NewFromInt(1), Type: compte.Epargne})
	if err != nil {
		t.Fatal(err)
	}
	if got.CreatedDate != "2024-05-06" {
		t.Fatalf("date=%q", got.CreatedDate)
	}
}

func TestCreateInvalid(t *testing.T) {
	b := NewBank()
	if _, err := b.Create(ctx, acct("1", "CHECKING", "")); !errors.Is(err, compte.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
	if all, _ := b.List(ctx); len(all) != 0 {
		t.Fatalf("invalid create must not store, got %d", len(all))
	}
}

// TestUpdate 驗證只取代 solde 與 type，dateCreation 與其他帳戶不變。
func TestUpdate(t *testing.T) {
	b := NewBank()
	a1, _ := b.Create(ctx, acct("100", compte.Courant, "2024-01-01"))
	a2, _ := b.Create(ctx, acct("200", compte.Courant, "2024-01-02"))

	upd, err := b.Update(ctx, a1.IDValue(), acct("150.25", compte.Epargne, "1999-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if !upd.Balance.Equal(decimal.RequireFromString("150.25")) || upd.Type != compte.Epargne {
		t.Fatalf("updated=%+v", upd)
	}
	if upd.CreatedDate != "2024-01-01" {
		t.Fatalf("creation date must be kept, got %q", upd.CreatedDate)
	}
	if !get(t, b, a2.IDValue()).Equal(a2) {
		t.Fatal("other account changed")
	}

	if _, err := b.Update(ctx, 42, acct("1", compte.Courant, "")); !errors.Is(err, compte.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	b := NewBank()
	a1, _ := b.Create(ctx, acct("200", compte.Epargne, "2024-01-01"))
	if err := b.Delete(ctx, a1.IDValue()); err != nil {
		t.Fatal(err)
	}
	if all, _ := b.List(ctx); len(all) != 0 {
		t.Fatalf("list after delete=%+v", all)
	}
	if err := b.Delete(ctx, a1.IDValue()); !errors.Is(err, compte.ErrNotFound) {
		t.Fatalf("second delete want ErrNotFound, got %v", err)
	}
	// 刪除後的 id 不回收
	a2, _ := b.Create(ctx, acct("1", compte.Courant, "2024-01-01"))
	if a2.IDValue() == a1.IDValue() {
		t.Fatalf("id %d reused", a2.IDValue())
	}
}

// TestConcurrentCreates 驗證高併發建立時 id 唯一。
func TestConcurrentCreates(t *testing.T) {
	b := NewBank()
	const workers = 100

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			if _, err := b.Create(ctx, acct("1", compte.Courant, "2024-01-01")); err != nil {
				t.Errorf("create err: %v", err)
			}
		}()
	}
	wg.Wait()

	all, _ := b.List(ctx)
	if len(all) != workers {
		t.Fatalf("len=%d want=%d", len(all), workers)
	}
	seen := make(map[int64]bool)
	for _, a := range all {
		if seen[a.IDValue()] {
			t.Fatalf("duplicate id %d", a.IDValue())
		}
		seen[a.IDValue()] = true
	}
}

// TestSnapshotRestore 驗證快照匯出與還原後狀態一致，且 id 序列延續。
func TestSnapshotRestore(t *testing.T) {
	b := NewBank()
	a1, _ := b.Create(ctx, acct("1000", compte.Courant, "2024-01-01"))
	a2, _ := b.Create(ctx, acct("500.5", compte.Epargne, "2024-01-02"))
	a3, _ := b.Create(ctx, acct("1", compte.Epargne, "2024-01-03"))
	_ = b.Delete(ctx, a3.IDValue())

	snap := b.Snapshot()

	b2 := NewBank()
	if err := b2.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if !get(t, b2, a1.IDValue()).Equal(a1) || !get(t, b2, a2.IDValue()).Equal(a2) {
		t.Fatal("restored accounts differ")
	}
	next, _ := b2.Create(ctx, acct("2", compte.Courant, "2024-01-04"))
	if next.IDValue() != 4 {
		t.Fatalf("next id=%d want 4", next.IDValue())
	}
}

func TestRestoreBadBalanceKeepsState(t *testing.T) {
	b := NewBank()
	a1, _ := b.Create(ctx, acct("1", compte.Courant, "2024-01-01"))
	snap := b.Snapshot()
	snap.Accounts[0].Balance = "not-a-number"
	if err := b.Restore(snap); err == nil {
		t.Fatal("expect error")
	}
	if !get(t, b, a1.IDValue()).Equal(a1) {
		t.Fatal("state changed after failed restore")
	}
}
