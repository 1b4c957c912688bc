// internal/bank/bank.go

// Package bank 定義 /comptes 資源的帳戶儲存：Store 介面與 in-memory 實作 Bank。
// Bank 採用單一互斥鎖 (sync.Mutex) 保障所有狀態變更「原子且序列化」，避免競爭條件。
// 其他後端（PostgreSQL、SQLite、DynamoDB）位於 storage 子套件，皆實作 Store。
package bank

import (
	"context"
	"sort"
	"sync"
	"time"

	"restclient/internal/compte"
	"restclient/internal/storage"
)

// Store 為 server 層依賴的帳戶儲存介面。
// 所有實作在 id 不存在時回傳 compte.ErrNotFound。
type Store interface {
	List(ctx context.Context) ([]compte.Account, error)
	Get(ctx context.Context, id int64) (compte.Account, error)
	Create(ctx context.Context, a compte.Account) (compte.Account, error)
	Update(ctx context.Context, id int64, a compte.Account) (compte.Account, error)
	Delete(ctx context.Context, id int64) error
}

// Bank 為 in-memory Store：
// - mu：序列化所有讀寫。
// - nextID：最後一個已指派的 id；刪除後不回收。
// - accts：帳戶索引表（ID → Account）。
type Bank struct {
	mu     sync.Mutex
	nextID int64
	accts  map[int64]compte.Account
	now    func() time.Time
}

var _ Store = (*Bank)(nil)

// NewBank 建立空白的 in-memory 儲存。
func NewBank() *Bank {
	return &Bank{accts: make(map[int64]compte.Account), now: time.Now}
}

// Create 新增帳戶並指派新 id；呼叫端送來的 id 一律忽略（由伺服器覆寫）。
// dateCreation 為空時以伺服器日期補上。
func (b *Bank) Create(_ context.Context, a compte.Account) (compte.Account, error) {
	if err := a.Validate(); err != nil {
		return compte.Account{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	a = a.WithID(b.nextID)
	if a.CreatedDate == "" {
		a.CreatedDate = compte.Today(b.now())
	}
	b.accts[b.nextID] = a
	return a, nil
}

// Get 依 ID 取得帳戶；若不存在回傳 ErrNotFound。
func (b *Bank) Get(_ context.Context, id int64) (compte.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accts[id]
	if !ok {
		return compte.Account{}, compte.ErrNotFound
	}
	return a, nil
}

// List 回傳依 id 遞增排序的所有帳戶。
func (b *Bank) List(_ context.Context) ([]compte.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]compte.Account, 0, len(b.accts))
	for _, a := range b.accts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IDValue() < out[j].IDValue() })
	return out, nil
}

// Update 取代 solde 與 type；id 以路徑為準，dateCreation 保留原值。
func (b *Bank) Update(_ context.Context, id int64, a compte.Account) (compte.Account, error) {
	if err := a.Validate(); err != nil {
		return compte.Account{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.accts[id]
	if !ok {
		return compte.Account{}, compte.ErrNotFound
	}
	cur.Balance = a.Balance
	cur.Type = a.Type
	b.accts[id] = cur
	return cur, nil
}

// Delete 移除帳戶；若不存在回傳 ErrNotFound。
func (b *Bank) Delete(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accts[id]; !ok {
		return compte.ErrNotFound
	}
	delete(b.accts, id)
	return nil
}

// Snapshot 匯出目前狀態到可持久化的 storage.Snapshot（帳戶依 id 排序）。
func (b *Bank) Snapshot() storage.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := storage.Snapshot{
		Meta: storage.Meta{
			Storage: "json_snapshot",
			Version: 2,
		},
		NextID: b.nextID,
	}
	for _, a := range b.accts {
		s.Accounts = append(s.Accounts, storage.PersistAccount{
			ID:          a.IDValue(),
			Balance:     a.Balance.String(),
			Type:        string(a.Type),
			CreatedDate: a.CreatedDate,
		})
	}
	sort.Slice(s.Accounts, func(i, j int) bool { return s.Accounts[i].ID < s.Accounts[j].ID })
	return s
}

// Restore 由 storage.Snapshot 還原狀態：重建 nextID 與帳戶 map。
// 無法解析的餘額會使整個還原失敗，原狀態不變。
func (b *Bank) Restore(s storage.Snapshot) error {
	accts := make(map[int64]compte.Account, len(s.Accounts))
	next := s.NextID
	for _, pa := range s.Accounts {
		bal, err := compte.ParseBalance(pa.Balance)
		if err != nil {
			return err
		}
		accts[pa.ID] = compte.Account{
			ID:          compte.IDPtr(pa.ID),
			Balance:     bal,
			Type:        compte.Type(pa.Type),
			CreatedDate: pa.CreatedDate,
		}
		if pa.ID > next {
			next = pa.ID
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID = next
	b.accts = accts
	return nil
}
