// internal/bank/banktest/banktest.go
//
// Package banktest 提供所有 bank.Store 實作共用的行為測試。
package banktest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"restclient/internal/bank"
	"restclient/internal/compte"
)

// Factory 每次呼叫都回傳一個空的 Store。
type Factory func(t *testing.T) bank.Store

func acct(bal string, typ compte.Type, date string) compte.Account {
	return compte.Account{Balance: decimal.RequireFromString(bal), Type: typ, CreatedDate: date}
}

// Run 對 newStore 產生的 Store 執行 CRUD 行為測試。
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("CreateAssignsServerID", func(t *testing.T) {
		s := newStore(t)
		in := acct("1500.50", compte.Courant, "2024-01-15").WithID(777)
		got, err := s.Create(ctx, in)
		if err != nil {
			t.Fatal(err)
		}
		if !got.HasID() || got.IDValue() == 777 {
			t.Fatalf("id=%s must be assigned by the store", got.IDString())
		}
		if !got.Balance.Equal(in.Balance) || got.Type != in.Type || got.CreatedDate != in.CreatedDate {
			t.Fatalf("got=%+v", got)
		}
		back, err := s.Get(ctx, got.IDValue())
		if err != nil || !back.Equal(got) {
			t.Fatalf("get=%+v err=%v", back, err)
		}
	})

	t.Run("CreateStampsMissingDate", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Create(ctx, acct("10", compte.Epargne, ""))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := time.Parse(compte.DateLayout, got.CreatedDate); err != nil {
			t.Fatalf("dateCreation=%q", got.CreatedDate)
		}
	})

	t.Run("CreateRejectsInvalid", func(t *testing.T) {
		s := newStore(t)
		for _, a := range []compte.Account{
			acct("1", compte.Type("JOINT"), "2024-01-01"),
			acct("1", compte.Courant, "15/01/2024"),
		} {
			if _, err := s.Create(ctx, a); !errors.Is(err, compte.ErrInvalid) {
				t.Fatalf("create %+v: err=%v", a, err)
			}
		}
		list, err := s.List(ctx)
		if err != nil || len(list) != 0 {
			t.Fatalf("list=%+v err=%v", list, err)
		}
	})

	t.Run("ListOrderedByID", func(t *testing.T) {
		s := newStore(t)
		var ids []int64
		for _, bal := range []string{"3", "-1.25", "0"} {
			a, err := s.Create(ctx, acct(bal, compte.Courant, "2024-02-02"))
			if err != nil {
				t.Fatal(err)
			}
			ids = append(ids, a.IDValue())
		}
		list, err := s.List(ctx)
		if err != nil || len(list) != 3 {
			t.Fatalf("list=%+v err=%v", list, err)
		}
		for i := range list {
			if list[i].IDValue() != ids[i] {
				t.Fatalf("order=%v want %v", list, ids)
			}
		}
		if !list[1].Balance.Equal(decimal.RequireFromString("-1.25")) {
			t.Fatalf("balance=%s", list[1].Balance)
		}
	})

	t.Run("UpdateKeepsCreationDate", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Create(ctx, acct("100", compte.Courant, "2024-01-15"))
		if err != nil {
			t.Fatal(err)
		}
		got, err := s.Update(ctx, a.IDValue(), acct("250.75", compte.Epargne, "1999-12-31"))
		if err != nil {
			t.Fatal(err)
		}
		want := acct("250.75", compte.Epargne, "2024-01-15").WithID(a.IDValue())
		if !got.Equal(want) {
			t.Fatalf("update=%+v want %+v", got, want)
		}
		back, _ := s.Get(ctx, a.IDValue())
		if !back.Equal(want) {
			t.Fatalf("get=%+v want %+v", back, want)
		}
		if _, err := s.Update(ctx, a.IDValue()+100, want); !errors.Is(err, compte.ErrNotFound) {
			t.Fatalf("update missing: err=%v", err)
		}
	})

	t.Run("DeleteRemovesOne", func(t *testing.T) {
		s := newStore(t)
		a, _ := s.Create(ctx, acct("1", compte.Courant, "2024-01-01"))
		b, _ := s.Create(ctx, acct("2", compte.Epargne, "2024-01-02"))
		if err := s.Delete(ctx, a.IDValue()); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, a.IDValue()); !errors.Is(err, compte.ErrNotFound) {
			t.Fatalf("second delete: err=%v", err)
		}
		if _, err := s.Get(ctx, a.IDValue()); !errors.Is(err, compte.ErrNotFound) {
			t.Fatalf("get deleted: err=%v", err)
		}
		list, _ := s.List(ctx)
		if len(list) != 1 || list[0].IDValue() != b.IDValue() {
			t.Fatalf("list=%+v", list)
		}
		c, _ := s.Create(ctx, acct("3", compte.Courant, "2024-01-03"))
		if c.IDValue() == a.IDValue() {
			t.Fatalf("id %d reused", c.IDValue())
		}
	})
}
