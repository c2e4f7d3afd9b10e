// Package sqlite 以 GORM 開啟單檔 SQLite，用於本機執行與測試
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/JoeShih716/go-statement-ledger/pkg/mysql"
)

// Config SQLite 設定
type Config struct {
	Path     string `mapstructure:"path" yaml:"path"`           // 資料庫檔案路徑，":memory:" 為記憶體資料庫
	LogLevel string `mapstructure:"log_level" yaml:"log_level"` // 同 mysql.Config.LogLevel
}

// Client 封裝 GORM DB 實例
type Client struct {
	db *gorm.DB
}

// NewClient 開啟 (或建立) 資料庫
// SQLite 同時只允許一個寫入者，連線池固定為 1，由 database/sql 排隊
func NewClient(cfg Config) (*Client, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("can not create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 mysql.NewGormLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("can not open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("can not connect with database: %w", err)
	}
	return &Client{db: db}, nil
}

func (c *Client) DB() *gorm.DB {
	return c.db
}

func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
