package directory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/ports"
)

// MemoryDirectory is an in-memory AccountDirectory for development and tests.
type MemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[string]*core.Account
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() ports.AccountDirectory {
	return &MemoryDirectory{accounts: make(map[string]*core.Account)}
}

// CreateOrGet returns the account for the wallet address, creating it on
// first sight.
func (d *MemoryDirectory) CreateOrGet(ctx context.Context, walletAddress string) (*core.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if account, ok := d.accounts[walletAddress]; ok {
		account.LastActiveAt = time.Now()
		return cloned(account), nil
	}

	now := time.Now()
	account := &core.Account{
		ID:            uuid.New().String(),
		WalletAddress: walletAddress,
		CreatedAt:     now,
		LastActiveAt:  now,
	}
	d.accounts[walletAddress] = account
	return cloned(account), nil
}

// Exists reports whether the wallet address has an account.
func (d *MemoryDirectory) Exists(ctx context.Context, walletAddress string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.accounts[walletAddress]
	return ok, nil
}

func cloned(account *core.Account) *core.Account {
	clone := *account
	return &clone
}
