// internal/storage/pgstore/pgstore.go
//
// Package pgstore 以 PostgreSQL（pgx 連線池）實作 bank.Store。
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"restclient/internal/bank"
	"restclient/internal/compte"
)

const schema = `
CREATE TABLE IF NOT EXISTS comptes (
	id            BIGSERIAL PRIMARY KEY,
	solde         NUMERIC   NOT NULL,
	type          TEXT      NOT NULL,
	date_creation TEXT      NOT NULL
)`

const columns = `id, solde::text, type, date_creation`

// Store 為 PostgreSQL 後端。
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ bank.Store = (*Store)(nil)

// Open 連線、等待資料庫就緒（指數退避重試 ping）並建立資料表。
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("pgstore: %w", err)
	}
	retry := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 6), ctx)
	err = backoff.RetryNotify(func() error { return pool.Ping(ctx) }, retry, func(err error, d time.Duration) {
		log.Printf("postgres not ready (%v), retrying in %s", err, d)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: schema: %w", err)
	}
	return &Store{pool: pool, now: time.Now}, nil
}

// Close 關閉連線池。
func (s *Store) Close() { s.pool.Close() }

func (s *Store) List(ctx context.Context) ([]compte.Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+columns+` FROM comptes ORDER BY id`)
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
	row := s.pool.QueryRow(ctx, `SELECT `+columns+` FROM comptes WHERE id = $1`, id)
	return scanOne(row)
}

// Create 忽略呼叫端的 id，由 BIGSERIAL 指派。
func (s *Store) Create(ctx context.Context, a compte.Account) (compte.Account, error) {
	if err := a.Validate(); err != nil {
		return compte.Account{}, err
	}
	if a.CreatedDate == "" {
		a.CreatedDate = compte.Today(s.now())
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO comptes (solde, type, date_creation) VALUES ($1::text::numeric, $2, $3) RETURNING `+columns,
		a.Balance.String(), string(a.Type), a.CreatedDate)
	return scanOne(row)
}

// Update 只取代 solde 與 type。
func (s *Store) Update(ctx context.Context, id int64, a compte.Account) (compte.Account, error) {
	if err := a.Validate(); err != nil {
		return compte.Account{}, err
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE comptes SET solde = $2::text::numeric, type = $3 WHERE id = $1 RETURNING `+columns,
		id, a.Balance.String(), string(a.Type))
	return scanOne(row)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comptes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return compte.ErrNotFound
	}
	return nil
}

func scanOne(row pgx.Row) (compte.Account, error) {
	a, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return compte.Account{}, compte.ErrNotFound
	}
	return a, err
}

func scan(row pgx.Row) (compte.Account, error) {
	var (
		id          int64
		solde, typ  string
		createdDate string
	)
	if err := row.Scan(&id, &solde, &typ, &createdDate); err != nil {
		return compte.Account{}, err
	}
	bal, err := decimal.NewFromString(solde)
	if err != nil {
		return compte.Account{}, fmt.Errorf("pgstore: account %d: %w", id, err)
	}
	return compte.Account{ID: compte.IDPtr(id), Balance: bal, Type: compte.Type(typ), CreatedDate: createdDate}, nil
}
