// internal/config/config.go
//
// Package config 從環境變數（可選 .env 檔）讀取伺服器與客戶端設定。
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"restclient/internal/codec"
)

// 可用的儲存後端。
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreDynamo   = "dynamodb"
)

// Server 為 cmd/server 的設定。
type Server struct {
	Addr        string `env:"COMPTES_ADDR,default=:8080"`
	Store       string `env:"COMPTES_STORE,default=memory"`
	DataFile    string `env:"COMPTES_DATA_FILE,default=data.json"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"COMPTES_SQLITE_PATH,default=comptes.db"`
	DynamoTable string `env:"COMPTES_DYNAMO_TABLE,default=comptes"`
	// DynamoEndpoint 非空時改連本地 DynamoDB（例如 dynamodb-local）。
	DynamoEndpoint string `env:"COMPTES_DYNAMO_ENDPOINT"`
	Telemetry      bool   `env:"COMPTES_TELEMETRY,default=false"`
}

// Client 為 cmd/client 的設定；命令列旗標會再覆寫這些值。
type Client struct {
	BaseURL   string        `env:"COMPTES_BASE_URL,default=http://localhost:8080"`
	Format    string        `env:"COMPTES_FORMAT,default=JSON"`
	Lang      string        `env:"COMPTES_LANG,default=fr"`
	Timeout   time.Duration `env:"COMPTES_TIMEOUT,default=10s"`
	Telemetry bool          `env:"COMPTES_TELEMETRY,default=false"`
}

// LoadDotEnv 載入 .env；檔案不存在時略過。
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadServer 讀取並驗證伺服器設定。
func LoadServer(ctx context.Context) (Server, error) {
	return loadServer(ctx, envconfig.OsLookuper())
}

// LoadClient 讀取並驗證客戶端設定。
func LoadClient(ctx context.Context) (Client, error) {
	return loadClient(ctx, envconfig.OsLookuper())
}

func loadServer(ctx context.Context, l envconfig.Lookuper) (Server, error) {
	var cfg Server
	if err := envconfig.ProcessWith(ctx, &cfg, l); err != nil {
		return cfg, fmt.Errorf("server config: %w", err)
	}
	return cfg, cfg.Validate()
}

func loadClient(ctx context.Context, l envconfig.Lookuper) (Client, error) {
	var cfg Client
	if err := envconfig.ProcessWith(ctx, &cfg, l); err != nil {
		return cfg, fmt.Errorf("client config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate 檢查後端名稱與其必要參數。
func (c Server) Validate() error {
	switch c.Store {
	case StoreMemory:
		if c.DataFile == "" {
			return errors.New("COMPTES_DATA_FILE is required for the memory store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("COMPTES_SQLITE_PATH is required for the sqlite store")
		}
	case StoreDynamo:
		if c.DynamoTable == "" {
			return errors.New("COMPTES_DYNAMO_TABLE is required for the dynamodb store")
		}
	default:
		return fmt.Errorf("unknown COMPTES_STORE %q", c.Store)
	}
	return nil
}

// Validate 檢查格式名稱與逾時。
func (c Client) Validate() error {
	if _, err := codec.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return errors.New("COMPTES_TIMEOUT must be positive")
	}
	return nil
}
