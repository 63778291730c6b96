package directory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrGetIsIdempotent(t *testing.T) {
	d := NewMemoryDirectory()
	ctx := context.Background()

	first, err := d.CreateOrGet(ctx, "addr1")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := d.CreateOrGet(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "addr1", second.WalletAddress)
}

func TestDistinctAddressesGetDistinctAccounts(t *testing.T) {
	d := NewMemoryDirectory()
	ctx := context.Background()

	a, err := d.CreateOrGet(ctx, "addr1")
	require.NoError(t, err)
	b, err := d.CreateOrGet(ctx, "addr2")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExists(t *testing.T) {
	d := NewMemoryDirectory()
	ctx := context.Background()

	ok, err := d.Exists(ctx, "addr1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = d.CreateOrGet(ctx, "addr1")
	require.NoError(t, err)

	ok, err = d.Exists(ctx, "addr1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConcurrentCreateOrGetSingleAccount(t *testing.T) {
	d := NewMemoryDirectory()
	ctx := context.Background()

	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			account, err := d.CreateOrGet(ctx, "addr-shared")
			if err == nil {
				ids[i] = account.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
}
