package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cardex-labs/cardex/core"
)

type fakeDirectory struct {
	accounts map[string]*core.Account
	nextID   int
	created  int
	err      error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{accounts: make(map[string]*core.Account)}
}

func (d *fakeDirectory) CreateOrGet(ctx context.Context, walletAddress string) (*core.Account, error) {
	if d.err != nil {
		return nil, d.err
	}
	if acc, ok := d.accounts[walletAddress]; ok {
		return acc, nil
	}
	d.nextID++
	d.created++
	acc := &core.Account{
		ID:            fmt.Sprintf("acct-%d", d.nextID),
		WalletAddress: walletAddress,
		CreatedAt:     time.Now(),
		LastActiveAt:  time.Now(),
	}
	d.accounts[walletAddress] = acc
	return acc, nil
}

func (d *fakeDirectory) Exists(ctx context.Context, walletAddress string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.accounts[walletAddress]
	return ok, nil
}

type fakeTokenizer struct {
	sessions map[string]*core.Session
	issued   int
}

func newFakeTokenizer() *fakeTokenizer {
	return &fakeTokenizer{sessions: make(map[string]*core.Session)}
}

func (t *fakeTokenizer) Issue(session *core.Session) (string, error) {
	t.issued++
	token := fmt.Sprintf("token-%d", t.issued)
	t.sessions[token] = session
	return token, nil
}

func (t *fakeTokenizer) Verify(token string) (*core.Session, error) {
	session, ok := t.sessions[token]
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, core.ErrSessionInvalid
	}
	return session, nil
}

type fakeEvents struct {
	logins        int
	logouts       int
	swapsPrepared int
}

func (e *fakeEvents) PublishLogin(ctx context.Context, userID, address string) error {
	e.logins++
	return nil
}

func (e *fakeEvents) PublishLogout(ctx context.Context, userID, address string) error {
	e.logouts++
	return nil
}

func (e *fakeEvents) PublishSwapPrepared(ctx context.Context, address string, quote *core.Quote) error {
	e.swapsPrepared++
	return nil
}

type fakeLedger struct {
	reserves map[string]*core.Reserves
	decimals map[string]int32
	utxos    map[string][]core.UTXO
	err      error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		reserves: make(map[string]*core.Reserves),
		decimals: make(map[string]int32),
		utxos:    make(map[string][]core.UTXO),
	}
}

func (l *fakeLedger) AddressUTXOs(ctx context.Context, address string) ([]core.UTXO, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.utxos[address], nil
}

func (l *fakeLedger) AssetDecimals(ctx context.Context, unit string) (int32, error) {
	if l.err != nil {
		return 0, l.err
	}
	return l.decimals[unit], nil
}

func (l *fakeLedger) PoolReserves(ctx context.Context, poolAddress string) (*core.Reserves, error) {
	if l.err != nil {
		return nil, l.err
	}
	reserves, ok := l.reserves[poolAddress]
	if !ok {
		return nil, core.ErrNetworkFailure
	}
	return reserves, nil
}

type fakePoolSource struct {
	pools map[string]*core.Pool // key assetA|assetB, unordered
}

func newFakePoolSource(pools ...*core.Pool) *fakePoolSource {
	s := &fakePoolSource{pools: make(map[string]*core.Pool)}
	for _, p := range pools {
		s.pools[p.AssetA+"|"+p.AssetB] = p
	}
	return s
}

func (s *fakePoolSource) PoolByPair(ctx context.Context, assetA, assetB string) (*core.Pool, error) {
	if p, ok := s.pools[assetA+"|"+assetB]; ok {
		return p, nil
	}
	if p, ok := s.pools[assetB+"|"+assetA]; ok {
		return p, nil
	}
	return nil, core.ErrPoolNotFound
}
