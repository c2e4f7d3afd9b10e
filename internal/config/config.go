// Package config 載入服務設定 (YAML 檔 + LEDGER_ 環境變數)
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-statement-ledger/pkg/keylock"
	"github.com/JoeShih716/go-statement-ledger/pkg/mysql"
	"github.com/JoeShih716/go-statement-ledger/pkg/sqlite"
)

// EnvPrefix 環境變數前綴，例如 LEDGER_STORAGE_DRIVER 對應 storage.driver
const EnvPrefix = "LEDGER"

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageMySQL  = "mysql"

	LockLocal = "local"
	LockRedis = "redis"
)

type Config struct {
	Server     ServerConfig  `mapstructure:"server" yaml:"server"`
	Log        LogConfig     `mapstructure:"log" yaml:"log"`
	Storage    StorageConfig `mapstructure:"storage" yaml:"storage"`
	Lock       LockConfig    `mapstructure:"lock" yaml:"lock"`
	Auth       AuthConfig    `mapstructure:"auth" yaml:"auth"`
	ConfigPath string        `mapstructure:"-" yaml:"-"`
}

type ServerConfig struct {
	GRPCAddr        string        `mapstructure:"grpc_addr" yaml:"grpc_addr"`
	HTTPAddr        string        `mapstructure:"http_addr" yaml:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type StorageConfig struct {
	// Driver: memory / sqlite / mysql
	Driver string        `mapstructure:"driver" yaml:"driver"`
	Memory MemoryConfig  `mapstructure:"memory" yaml:"memory"`
	SQLite sqlite.Config `mapstructure:"sqlite" yaml:"sqlite"`
	MySQL  mysql.Config  `mapstructure:"mysql" yaml:"mysql"`
}

// MemoryConfig Dir 為空時不寫 WAL (重啟後資料消失)
type MemoryConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type LockConfig struct {
	// Driver: local / redis
	Driver string              `mapstructure:"driver" yaml:"driver"`
	Redis  keylock.RedisConfig `mapstructure:"redis" yaml:"redis"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

// NewDefault 預設值，單機記憶體模式即可啟動
func NewDefault() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr:        ":50051",
			HTTPAddr:        ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
			Memory: MemoryConfig{Dir: "data"},
			SQLite: sqlite.Config{
				Path:     "data/ledger.db",
				LogLevel: "error",
			},
			MySQL: mysql.Config{
				Host:            "127.0.0.1",
				Port:            3306,
				User:            "root",
				DBName:          "ledger",
				MaxOpenConns:    100,
				MaxIdleConns:    10,
				ConnMaxLifetime: 30 * time.Minute,
				ConnectRetries:  10,
				RetryInterval:   2 * time.Second,
				LogLevel:        "error",
			},
		},
		Lock: LockConfig{
			Driver: LockLocal,
			Redis: keylock.RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "ledger:lock:",
				TTL:    10 * time.Second,
				Retry:  5 * time.Millisecond,
			},
		},
		Auth: AuthConfig{
			JWTSecret: "change-me",
		},
	}
}

// Load 依序套用: 預設值 -> 設定檔 (path 為空則略過) -> LEDGER_ 環境變數
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 先把預設值當成一份設定讀進去，讓 viper 知道所有 key，環境變數才能覆蓋
	base, err := yaml.Marshal(NewDefault())
	if err != nil {
		return nil, fmt.Errorf("failed to render defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := NewDefault()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.ConfigPath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 檢查列舉型的設定
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite, StorageMySQL:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	switch c.Lock.Driver {
	case LockLocal, LockRedis:
	default:
		return fmt.Errorf("unknown lock.driver %q", c.Lock.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

// WriteDefault 將預設設定寫成 YAML，檔案已存在時不覆蓋
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out, err := yaml.Marshal(NewDefault())
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}
