package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Session is the conversational state of one chat.
type Session struct {
	Channel       string    `json:"channel"`
	ChatID        string    `json:"chatId"`
	State         string    `json:"state"`
	ProductID     uint64    `json:"productId,omitempty"`
	InvoiceNumber string    `json:"invoiceNumber,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SessionStore keeps chat sessions keyed by channel and chat id. Entries
// expire ttl after their last write.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(channel, chatID string) string {
	return fmt.Sprintf("session:%s:%s", channel, chatID)
}

func (s *SessionStore) Get(ctx context.Context, channel, chatID string) (*Session, error) {
	val, err := s.rdb.Get(ctx, sessionKey(channel, chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.Channel, sess.ChatID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, channel, chatID string) error {
	if err := s.rdb.Del(ctx, sessionKey(channel, chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
