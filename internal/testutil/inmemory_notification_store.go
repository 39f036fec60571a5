package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/hidecraft/storefront-webhooks/internal/domain/notification"
)

// InMemoryNotificationStore implements notification.Repository for tests
type InMemoryNotificationStore struct {
	mu        sync.RWMutex
	cooldowns map[notification.Channel]time.Time
	logs      []*notification.Log
}

// NewInMemoryNotificationStore creates a new in-memory notification store
func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{
		cooldowns: make(map[notification.Channel]time.Time),
	}
}

func (s *InMemoryNotificationStore) GetCooldown(_ context.Context, channel notification.Channel) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if at, ok := s.cooldowns[channel]; ok {
		return &at, nil
	}
	return nil, nil
}

func (s *InMemoryNotificationStore) TouchCooldown(_ context.Context, channel notification.Channel, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldowns[channel] = at
	return nil
}

func (s *InMemoryNotificationStore) InsertLog(_ context.Context, log *notification.Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

// Logs returns the recorded notification logs
func (s *InMemoryNotificationStore) Logs() []*notification.Log {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*notification.Log, len(s.logs))
	copy(out, s.logs)
	return out
}

// SetCooldown seeds a cooldown row for tests
func (s *InMemoryNotificationStore) SetCooldown(channel notification.Channel, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldowns[channel] = at
}
