// internal/adapter/adapter.go
//
// Package adapter 將記憶體中的帳戶序列綁定到可捲動的列 (Row)。
// Adapter 只保存暫時的拷貝；權威資料在伺服器端。
// 所有方法都必須在 UI loop 上呼叫，不得從背景 goroutine 直接修改。
package adapter

import (
	"fmt"

	"restclient/internal/compte"
)

// Row 為單一列的顯示內容。
type Row struct {
	ID      string
	Balance string
	Type    string
	Date    string
}

// Renderer 重新繪製整個清單。
type Renderer interface {
	Render(rows []Row)
}

// Listener 接收列上的更新 / 刪除意圖。
type Listener interface {
	OnUpdateRequested(a compte.Account)
	OnDeleteRequested(a compte.Account)
}

// Adapter 持有目前顯示的帳戶序列。
type Adapter struct {
	items    []compte.Account
	renderer Renderer
	listener Listener
}

// New 建立 Adapter；renderer 與 listener 皆可為 nil。
func New(r Renderer, l Listener) *Adapter {
	return &Adapter{renderer: r, listener: l}
}

// ReplaceAll 以拷貝整批取代顯示序列，並觸發完整重繪。
func (ad *Adapter) ReplaceAll(accounts []compte.Account) {
	items := make([]compte.Account, len(accounts))
	copy(items, accounts)
	ad.items = items
	if ad.renderer != nil {
		ad.renderer.Render(ad.Rows())
	}
}

// Len 回傳列數。
func (ad *Adapter) Len() int { return len(ad.items) }

// IndexOf 回傳 id 所在的列；找不到時回傳 -1。
func (ad *Adapter) IndexOf(id int64) int {
	for i, a := range ad.items {
		if a.HasID() && a.IDValue() == id {
			return i
		}
	}
	return -1
}

// Rows 將目前序列格式化為顯示列。
func (ad *Adapter) Rows() []Row {
	rows := make([]Row, len(ad.items))
	for i, a := range ad.items {
		rows[i] = Row{
			ID:      a.IDString(),
			Balance: a.Balance.StringFixed(2),
			Type:    string(a.Type),
			Date:    a.CreatedDate,
		}
	}
	return rows
}

// RequestUpdate 對應列上的「修改」動作。
func (ad *Adapter) RequestUpdate(i int) error {
	if err := ad.check(i); err != nil {
		return err
	}
	if ad.listener != nil {
		ad.listener.OnUpdateRequested(ad.items[i])
	}
	return nil
}

// RequestDelete 對應列上的「刪除」動作。
func (ad *Adapter) RequestDelete(i int) error {
	if err := ad.check(i); err != nil {
		return err
	}
	if ad.listener != nil {
		ad.listener.OnDeleteRequested(ad.items[i])
	}
	return nil
}

func (ad *Adapter) check(i int) error {
	if i < 0 || i >= len(ad.items) {
		return fmt.Errorf("row %d out of range [0,%d)", i, len(ad.items))
	}
	return nil
}
