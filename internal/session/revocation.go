package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList tracks revoked session token ids in Redis. Entries expire
// together with the token they revoke, so the set stays bounded.
type RevocationList struct {
	client *redis.Client
}

// NewRevocationList constructs a RevocationList.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke marks a token id as revoked until it would have expired anyway.
func (l *RevocationList) Revoke(ctx context.Context, jti string, until time.Time) error {
	if l == nil || l.client == nil || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, l.key(jti), 1, ttl).Err()
}

// IsRevoked reports whether the token id has been revoked.
func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if l == nil || l.client == nil || jti == "" {
		return false, nil
	}
	n, err := l.client.Exists(ctx, l.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RevocationList) key(jti string) string {
	return "session:revoked:" + jti
}
