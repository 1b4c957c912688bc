// internal/storage/sqlitestore/sqlitestore.go
//
// Package sqlitestore 以單一 SQLite 檔案實作 bank.Store，適合單機部署。
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"restclient/internal/bank"
	"restclient/internal/compte"
)

// AUTOINCREMENT 保證刪除後 id 不被重用。
const schema = `CREATE TABLE IF NOT EXISTS comptes (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	solde         TEXT NOT NULL,
	type          TEXT NOT NULL,
	date_creation TEXT NOT NULL
)`

const columns = `id, solde, type, date_creation`

// Store 為 SQLite 後端。
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ bank.Store = (*Store)(nil)

// Open 開啟（必要時建立）資料庫檔案與資料表。
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: %w", err)
	}
	// SQLite 僅允許單一寫入者
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close 關閉資料庫。
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) List(ctx context.Context) ([]compte.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM comptes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []compte.Account{}
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (compte.Account, error) {
	a, err := scan(s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM comptes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return compte.Account{}, compte.ErrNotFound
	}
	return a, err
}

// Create 忽略呼叫端的 id。
func (s *Store) Create(ctx context.Context, a compte.Account) (compte.Account, error) {
	if err := a.Validate(); err != nil {
		return compte.Account{}, err
	}
	if a.CreatedDate == "" {
		a.CreatedDate = compte.Today(s.now())
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comptes (solde, type, date_creation) VALUES (?, ?, ?)`,
		a.Balance.String(), string(a.Type), a.CreatedDate)
	if err != nil {
		return compte.Account{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return compte.Account{}, err
	}
	return a.WithID(id), nil
}

// Update 只取代 solde 與 type。
func (s *Store) Update(ctx context.Context, id int64, a compte.Account) (compte.Account, error) {
	if err := a.Validate(); err != nil {
		return compte.Account{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE comptes SET solde = ?, type = ? WHERE id = ?`,
		a.Balance.String(), string(a.Type), id)
	if err != nil {
		return compte.Account{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return compte.Account{}, err
	} else if n == 0 {
		return compte.Account{}, compte.ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comptes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return compte.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (compte.Account, error) {
	var (
		id                     int64
		solde, typ, createdDate string
	)
	if err := row.Scan(&id, &solde, &typ, &createdDate); err != nil {
		return compte.Account{}, err
	}
	bal, err := decimal.NewFromString(solde)
	if err != nil {
		return compte.Account{}, fmt.Errorf("sqlitestore: account %d: %w", id, err)
	}
	return compte.Account{ID: compte.IDPtr(id), Balance: bal, Type: compte.Type(typ), CreatedDate: createdDate}, nil
}
