// cmd/server/main.go

// 本服務為 /comptes 資源的參考伺服器（JSON 與 XML 兩種格式）。
// 此檔案負責讀取設定、選擇儲存後端（memory, postgres, sqlite, dynamodb），
// 並啟動 HTTP 伺服器；memory 後端在啟動時載入、每次變更後與結束時保存 JSON 快照。

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"restclient/internal/bank"
	"restclient/internal/config"
	"restclient/internal/server"
	"restclient/internal/storage"
	"restclient/internal/storage/dynstore"
	"restclient/internal/storage/pgstore"
	"restclient/internal/storage/sqlitestore"
	"restclient/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	// SIGINT/SIGTERM 觸發優雅關閉
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServer(ctx)
	if err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Setup(cfg.Telemetry, "comptes-server")
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer shutdownTelemetry()

	store, persist, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	s := server.NewServer(store, persist)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Comptes server (%s store) running at %s", cfg.Store, cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// 結束前再保存一次
	if persist != nil {
		if err := persist(); err != nil {
			log.Printf("final persist failed: %v", err)
		}
	}
	log.Println("Comptes server stopped")
	return nil
}

// openStore 依設定建立儲存後端；persist 僅 memory 後端非 nil。
func openStore(ctx context.Context, cfg config.Server) (bank.Store, func() error, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case config.StorePostgres:
		s, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, noop, err
		}
		return s, nil, s.Close, nil

	case config.StoreSQLite:
		s, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, noop, err
		}
		return s, nil, func() { _ = s.Close() }, nil

	case config.StoreDynamo:
		client, err := dynstore.NewClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			return nil, nil, noop, err
		}
		return dynstore.New(client, cfg.DynamoTable), nil, noop, nil
	}

	// memory：嘗試從上次的 JSON 快照載入資料，若不存在則以空銀行啟動
	b := bank.NewBank()
	snap, ok, err := storage.LoadSnapshot(cfg.DataFile)
	if err != nil {
		return nil, nil, noop, err
	}
	if ok {
		if err := b.Restore(snap); err != nil {
			return nil, nil, noop, fmt.Errorf("restore %s: %w", cfg.DataFile, err)
		}
		log.Printf("Restored %d accounts from %s", len(snap.Accounts), cfg.DataFile)
	}
	// 序列化快照寫入，檔案內容一定是最後一次取得的狀態
	var mu sync.Mutex
	persist := func() error {
		mu.Lock()
		defer mu.Unlock()
		return storage.SaveSnapshot(cfg.DataFile, b.Snapshot())
	}
	return b, persist, noop, nil
}
