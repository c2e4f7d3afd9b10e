package mysql

import (
	"fmt"
	"time"
)

// Config 定義 MySQL 連線與連線池的配置
type Config struct {
	Host     string `mapstructure:"host" yaml:"host"`         // 資料庫主機地址
	Port     int    `mapstructure:"port" yaml:"port"`         // 資料庫埠號 (預設 3306)
	User     string `mapstructure:"user" yaml:"user"`         // 使用者名稱
	Password string `mapstructure:"password" yaml:"password"` // 密碼
	DBName   string `mapstructure:"db_name" yaml:"db_name"`   // 資料庫名稱

	// 連線池設定 (Connection Pool)
	// 參考: https://github.com/go-sql-driver/mysql#important-settings
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`       // 最大開啟連線數
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`       // 最大閒置連線數
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"` // 連線最大存活時間

	// 啟動時連線重試
	ConnectRetries int           `mapstructure:"connect_retries" yaml:"connect_retries"`
	RetryInterval  time.Duration `mapstructure:"retry_interval" yaml:"retry_interval"`

	// GORM 設定
	LogLevel string `mapstructure:"log_level" yaml:"log_level"` // Log 等級: "silent", "error", "warn", "info"
}

// DSN (Data Source Name) 產生連線字串
// 格式: user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true
// multiStatements 給 migration 使用
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}
