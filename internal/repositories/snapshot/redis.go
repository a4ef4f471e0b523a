package snapshot

import (
	"context"
	"encoding/json"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/llmadventure/llmadventure/internal/errors"
	redisclient "github.com/llmadventure/llmadventure/internal/redis"
	gamesnapshot "github.com/llmadventure/llmadventure/internal/snapshot"
)

const (
	slotKeyPrefix = "snapshot:slot:"
	slotIndexKey  = "snapshot:slots"

	errSlotEmpty   = "slot name cannot be empty"
	errSnapshotNil = "snapshot cannot be nil"
	errClientNil   = "redis client cannot be nil"
)

// RedisConfig holds dependencies for the Redis-backed repository
type RedisConfig struct {
	Client redisclient.Client
}

// Validate ensures the config is complete
func (c *RedisConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Client == nil {
		return errors.InvalidArgument(errClientNil)
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a Redis-backed snapshot repository
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{
		client: cfg.Client,
	}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Slot == "" {
		return nil, errors.InvalidArgument(errSlotEmpty)
	}
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument(errSnapshotNil)
	}
	if err := input.Snapshot.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.Snapshot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal snapshot")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, slotKeyPrefix+input.Slot, data, 0)
	pipe.SAdd(ctx, slotIndexKey, input.Slot)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save snapshot to slot %s", input.Slot)
	}

	return &SaveOutput{}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Slot == "" {
		return nil, errors.InvalidArgument(errSlotEmpty)
	}

	result, err := r.client.Get(ctx, slotKeyPrefix+input.Slot).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("slot %s is empty", input.Slot)
		}
		return nil, errors.Wrapf(err, "failed to load slot %s", input.Slot)
	}

	var snap gamesnapshot.Snapshot
	if err := json.Unmarshal([]byte(result), &snap); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to unmarshal snapshot")
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	return &GetOutput{Snapshot: &snap}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	slots, err := r.client.SMembers(ctx, slotIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list slots")
	}
	sort.Strings(slots)

	out := &ListOutput{}
	for _, slot := range slots {
		getOutput, err := r.Get(ctx, GetInput{Slot: slot})
		if err != nil {
			// Stale index entry, clean it up
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, slotIndexKey, slot)
				continue
			}
			return nil, err
		}
		out.Slots = append(out.Slots, SlotInfo{
			Slot:      slot,
			SessionID: getOutput.Snapshot.SessionID,
			SavedAt:   getOutput.Snapshot.SavedAt,
		})
	}

	return out, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Slot == "" {
		return nil, errors.InvalidArgument(errSlotEmpty)
	}

	exists, err := r.client.Exists(ctx, slotKeyPrefix+input.Slot).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check slot %s", input.Slot)
	}
	if exists == 0 {
		return nil, errors.NotFoundf("slot %s is empty", input.Slot)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, slotKeyPrefix+input.Slot)
	pipe.SRem(ctx, slotIndexKey, input.Slot)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete slot %s", input.Slot)
	}

	return &DeleteOutput{}, nil
}
