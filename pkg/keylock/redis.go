package keylock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 只刪除自己持有的鎖
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig Redis 鎖設定
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Retry    time.Duration `mapstructure:"retry" yaml:"retry"`
}

// Redis 跨行程的 key 鎖 (SET NX PX + 比對 token 後刪除)
// 多個 ledger 行程共用同一個資料庫時使用
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedis 建立 Redis 鎖並確認連線
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisWithClient(client, cfg), nil
}

// NewRedisWithClient 使用既有的 client
func NewRedisWithClient(client *redis.Client, cfg RedisConfig) *Redis {
	if cfg.Prefix == "" {
		cfg.Prefix = "ledger:lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Retry <= 0 {
		cfg.Retry = 5 * time.Millisecond
	}
	return &Redis{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		retry:  cfg.Retry,
	}
}

// Lock 依排序後的順序逐一取得鎖，任何一把失敗都會釋放已取得的鎖
func (r *Redis) Lock(ctx context.Context, keys ...string) (func(), error) {
	ordered := normalize(keys)
	token := uuid.NewString()
	acquired := make([]string, 0, len(ordered))

	release := func() {
		// 使用獨立 ctx，呼叫端 ctx 取消後仍要釋放
		relCtx, cancel := context.WithTimeout(context.Background(), r.ttl)
		defer cancel()
		for i := len(acquired) - 1; i >= 0; i-- {
			_ = releaseScript.Run(relCtx, r.client, []string{acquired[i]}, token).Err()
		}
	}

	for _, key := range ordered {
		full := r.prefix + key
		if err := r.acquire(ctx, full, token); err != nil {
			release()
			return nil, err
		}
		acquired = append(acquired, full)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (r *Redis) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close 關閉 Redis 連線
func (r *Redis) Close() error {
	return r.client.Close()
}
