package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/ports"
)

const accountKeyPrefix = "cardex:account:"

// RedisDirectory is a Redis-backed AccountDirectory. Accounts are stored as
// JSON under one key per wallet address; SetNX keeps concurrent first logins
// from racing each other into duplicate records.
type RedisDirectory struct {
	client *redis.Client
}

// NewRedisDirectory creates a directory over an existing Redis client.
func NewRedisDirectory(client *redis.Client) ports.AccountDirectory {
	return &RedisDirectory{client: client}
}

type accountRecord struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
	LastActiveAt  time.Time `json:"last_active_at"`
}

// CreateOrGet returns the account for the wallet address, creating it on
// first sight.
func (d *RedisDirectory) CreateOrGet(ctx context.Context, walletAddress string) (*core.Account, error) {
	key := accountKeyPrefix + walletAddress

	if account, err := d.fetch(ctx, key); err == nil {
		return account, nil
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: fetching account: %v", core.ErrStorageFailure, err)
	}

	now := time.Now()
	record := accountRecord{
		ID:            uuid.New().String(),
		WalletAddress: walletAddress,
		CreatedAt:     now,
		LastActiveAt:  now,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding account: %v", core.ErrStorageFailure, err)
	}

	created, err := d.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: storing account: %v", core.ErrStorageFailure, err)
	}
	if !created {
		// Lost the race; the other writer's record wins.
		account, err := d.fetch(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: re-fetching account: %v", core.ErrStorageFailure, err)
		}
		return account, nil
	}

	return recordToAccount(record), nil
}

// Exists reports whether the wallet address has an account.
func (d *RedisDirectory) Exists(ctx context.Context, walletAddress string) (bool, error) {
	n, err := d.client.Exists(ctx, accountKeyPrefix+walletAddress).Result()
	if err != nil {
		return false, fmt.Errorf("%w: checking account: %v", core.ErrStorageFailure, err)
	}
	return n > 0, nil
}

func (d *RedisDirectory) fetch(ctx context.Context, key string) (*core.Account, error) {
	data, err := d.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var record accountRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return recordToAccount(record), nil
}

func recordToAccount(record accountRecord) *core.Account {
	return &core.Account{
		ID:            record.ID,
		WalletAddress: record.WalletAddress,
		CreatedAt:     record.CreatedAt,
		LastActiveAt:  record.LastActiveAt,
	}
}
