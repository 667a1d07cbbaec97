package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next admin page view.
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func (f Flash) IsZero() bool {
	return f.Text == ""
}

// FlashStore keeps flashes between a POST and the redirected GET. Take
// returns a zero Flash when the id is unknown or expired.
type FlashStore interface {
	Put(ctx context.Context, id string, flash Flash) error
	Take(ctx context.Context, id string) (Flash, error)
}

// NewFlashID returns a fresh random flash id.
func NewFlashID() string {
	return uuid.NewString()
}

// ValidFlashID rejects cookie values that are not ids we issued.
func ValidFlashID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type redisFlashStore struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisFlashStore(redisClient *redis.Client, ttl time.Duration) FlashStore {
	return &redisFlashStore{
		redisClient: redisClient,
		keyPrefix:   "furnistor:flash:",
		ttl:         ttl,
	}
}

func (s *redisFlashStore) Put(ctx context.Context, id string, flash Flash) error {
	data, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("failed to encode flash: %w", err)
	}

	if err := s.redisClient.Set(ctx, s.keyPrefix+id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store flash %s: %w", id, err)
	}
	return nil
}

func (s *redisFlashStore) Take(ctx context.Context, id string) (Flash, error) {
	val, err := s.redisClient.GetDel(ctx, s.keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Flash{}, nil
		}
		return Flash{}, fmt.Errorf("failed to take flash %s: %w", id, err)
	}

	var flash Flash
	if err := json.Unmarshal(val, &flash); err != nil {
		return Flash{}, fmt.Errorf("failed to decode flash %s: %w", id, err)
	}
	return flash, nil
}

type memoryEntry struct {
	flash   Flash
	expires time.Time
}

type memoryFlashStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryFlashStore keeps flashes in process memory. Used when Redis is
// disabled.
func NewMemoryFlashStore(ttl time.Duration) FlashStore {
	return &memoryFlashStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *memoryFlashStore) Put(_ context.Context, id string, flash Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
	s.entries[id] = memoryEntry{flash: flash, expires: now.Add(s.ttl)}
	return nil
}

func (s *memoryFlashStore) Take(_ context.Context, id string) (Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Flash{}, nil
	}
	delete(s.entries, id)

	if s.now().After(e.expires) {
		return Flash{}, nil
	}
	return e.flash, nil
}
