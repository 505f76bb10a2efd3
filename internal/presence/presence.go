// Package presence tracks which staff member is currently editing a
// record, backed by Redis TTL keys. Claims expire on their own, so a
// crashed browser never wedges a record.
package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker claims and releases per-record editing locks.
type Tracker struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a tracker. The TTL is how long a claim survives without
// renewal; claimers are expected to re-claim on a shorter interval.
func New(client *redis.Client, ttl time.Duration) *Tracker {
	return &Tracker{client: client, ttl: ttl}
}

func key(resource string, id uint) string {
	return fmt.Sprintf("presence:%s:%d", resource, id)
}

// Claim attempts to take the editing claim on a record. Re-claiming a
// record the user already holds renews the TTL. Returns whether the
// caller now holds the claim and, when not, who does.
func (t *Tracker) Claim(ctx context.Context, resource string, id, userID uint) (ok bool, holder uint, err error) {
	k := key(resource, id)
	val := strconv.FormatUint(uint64(userID), 10)

	set, err := t.client.SetNX(ctx, k, val, t.ttl).Result()
	if err != nil {
		return false, 0, err
	}
	if set {
		return true, userID, nil
	}

	cur, err := t.client.Get(ctx, k).Result()
	if err == redis.Nil {
		// Claim expired between SetNX and Get; retry once.
		set, err := t.client.SetNX(ctx, k, val, t.ttl).Result()
		if err != nil {
			return false, 0, err
		}
		if set {
			return true, userID, nil
		}
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}

	h, _ := strconv.ParseUint(cur, 10, 64)
	if uint(h) == userID {
		// Renew our own claim.
		if err := t.client.Expire(ctx, k, t.ttl).Err(); err != nil {
			return false, 0, err
		}
		return true, userID, nil
	}
	return false, uint(h), nil
}

// Release drops the claim if the caller holds it. Releasing someone
// else's claim is a no-op.
func (t *Tracker) Release(ctx context.Context, resource string, id, userID uint) error {
	k := key(resource, id)
	cur, err := t.client.Get(ctx, k).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	h, _ := strconv.ParseUint(cur, 10, 64)
	if uint(h) != userID {
		return nil
	}
	return t.client.Del(ctx, k).Err()
}

// Holder returns who currently holds the claim, or zero when nobody does.
func (t *Tracker) Holder(ctx context.Context, resource string, id uint) (uint, error) {
	cur, err := t.client.Get(ctx, key(resource, id)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	h, err := strconv.ParseUint(cur, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(h), nil
}
