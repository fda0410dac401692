package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
)

// Backend 缓存后端接口
// 合同必须能由进程内 map、嵌入式持久存储或网络缓存同等满足；
// 调用方只能依赖"值存在且未过期，或不存在"，不得依赖淘汰顺序等后端特性
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// memoryBackend 进程内缓存后端
type memoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   time2.Clock
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryBackend 创建进程内缓存后端
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewMemoryBackend(clock time2.Clock) Backend {
	return &memoryBackend{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

// Get 过期条目绝不返回，顺手删除
func (b *memoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expires.After(b.clock.Now()) {
		b.mu.Lock()
		delete(b.entries, key)
		b.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (b *memoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[key] = memoryEntry{
		value:   value,
		expires: b.clock.Now().Add(ttl),
	}
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key)
	return nil
}

func (b *memoryBackend) InvalidatePrefix(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key := range b.entries {
		if strings.HasPrefix(key, prefix) {
			delete(b.entries, key)
		}
	}
	return nil
}
