package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimStore implements ports.SettleClaimStore with SET NX. The TTL bounds
// how long a crashed holder can block other processes; the database CAS
// remains the correctness guarantee.
type ClaimStore struct {
	client *redis.Client
}

func NewClaimStore(client *redis.Client) *ClaimStore {
	return &ClaimStore{client: client}
}

func claimKey(reference string) string {
	return "settle:claim:" + reference
}

func (s *ClaimStore) Claim(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, claimKey(reference), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring settle claim: %w", err)
	}
	return ok, nil
}

func (s *ClaimStore) Release(ctx context.Context, reference string) error {
	if err := s.client.Del(ctx, claimKey(reference)).Err(); err != nil {
		return fmt.Errorf("releasing settle claim: %w", err)
	}
	return nil
}
