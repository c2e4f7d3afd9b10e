// Package keylock 提供以字串 key 為單位的互斥鎖
package keylock

import (
	"context"
	"slices"
	"sync"
)

// slot 單一 key 的鎖，以容量 1 的 channel 實作，才能配合 ctx 取消
type slot struct {
	ch   chan struct{}
	refs int
}

// Local 行程內的 key 鎖，沒有人持有或等待的 key 會被回收
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func NewLocal() *Local {
	return &Local{
		slots: make(map[string]*slot),
	}
}

// Lock 依排序後的順序取得所有 key 的鎖
//
// 參數:
//
//	ctx: 等待期間 ctx 被取消時，已取得的鎖會全部釋放
//	keys: 要鎖定的 key，重複的 key 只鎖一次
//
// 回傳:
//
//	unlock: 以相反順序釋放
//	error: ctx.Err()
func (l *Local) Lock(ctx context.Context, keys ...string) (func(), error) {
	ordered := normalize(keys)
	acquired := make([]string, 0, len(ordered))

	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			l.release(acquired[i])
		}
	}

	for _, key := range ordered {
		if err := l.acquire(ctx, key); err != nil {
			release()
			return nil, err
		}
		acquired = append(acquired, key)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (l *Local) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.unref(key, s)
		l.mu.Unlock()
		return ctx.Err()
	}
}

func (l *Local) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		return
	}
	<-s.ch
	l.unref(key, s)
}

// unref 需持有 l.mu
func (l *Local) unref(key string, s *slot) {
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// size 目前追蹤中的 key 數量
func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
