package commitments

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	id "verdict/pkg/domain"
)

// commitmentTTL bounds bookkeeping retention; commitments are only useful
// until the case resolves.
const commitmentTTL = 30 * 24 * time.Hour

// RedisRecorder tracks commitment first-use in redis so bookkeeping
// survives restarts and is shared across replicas.
type RedisRecorder struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisRecorder {
	return &RedisRecorder{client: client}
}

func (r *RedisRecorder) Record(ctx context.Context, caseID id.CaseID, commitment []byte) (bool, error) {
	key := fmt.Sprintf("verdict:commitment:%d:%s", caseID, hex.EncodeToString(commitment))
	first, err := r.client.SetNX(ctx, key, 1, commitmentTTL).Result()
	if err != nil {
		return false, fmt.Errorf("record commitment: %w", err)
	}
	return first, nil
}

// MemoryRecorder is the in-process fallback when redis is not configured.
type MemoryRecorder struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemory() *MemoryRecorder {
	return &MemoryRecorder{seen: make(map[string]struct{})}
}

func (r *MemoryRecorder) Record(ctx context.Context, caseID id.CaseID, commitment []byte) (bool, error) {
	key := fmt.Sprintf("%d:%s", caseID, hex.EncodeToString(commitment))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[key]; ok {
		return false, nil
	}
	r.seen[key] = struct{}{}
	return true, nil
}
