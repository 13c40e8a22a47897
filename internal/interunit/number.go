package interunit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mizan-erp/mizan/internal/shared"
)

// Sequence hands out transfer numbers from a monotonic redis counter.
// Numbers survive restarts and are never reused, including for transfers
// that are later cancelled.
type Sequence struct {
	rdb *redis.Client
}

// NewSequence wires the sequence to redis.
func NewSequence(rdb *redis.Client) *Sequence {
	return &Sequence{rdb: rdb}
}

// Next returns the next display number, e.g. "TR-000042".
func (s *Sequence) Next(ctx context.Context) (string, error) {
	n, err := s.rdb.Incr(ctx, shared.TransferSequenceKey).Result()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TR-%06d", n), nil
}
