package core

import (
	"math/big"
	"time"
)

const (
	// Lovelace is the on-chain identifier of the network's base currency.
	Lovelace = "lovelace"

	// BaseDecimals is the decimal count of the base currency.
	BaseDecimals = 6
)

// Session represents an authenticated user session. Validity is a function of
// the signed token carrying it, not of any server-side table.
type Session struct {
	UserID    string    // Account identifier from the directory
	Address   string    // Wallet address the session was issued for
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}

// Account is the directory's record for a wallet address.
type Account struct {
	ID            string
	WalletAddress string
	CreatedAt     time.Time
	LastActiveAt  time.Time
}

// Challenge is the message a wallet must sign to authenticate.
type Challenge struct {
	Address   string    // Wallet address the challenge was issued for
	Nonce     string    // Hex-encoded random nonce
	IssuedAt  time.Time // When the challenge was composed
	Message   string    // Exact text the wallet is asked to sign
}

// SignaturePackage is what the wallet returns after signing a challenge.
type SignaturePackage struct {
	Signature string `json:"signature"` // Signature bytes as produced by the wallet
	Key       string `json:"key"`       // Wallet-reported signing address
	Message   string `json:"message"`   // The message the wallet claims to have signed
}

// Pool identifies a liquidity pool and its asset pair.
type Pool struct {
	Address string `json:"address"`
	AssetA  string `json:"assetA"`
	AssetB  string `json:"assetB"`
}

// Reserves is a snapshot of a pool's holdings, read fresh per quote. A holds
// the base-currency column of the pool address, B the other asset's column.
type Reserves struct {
	A *big.Int
	B *big.Int
}

// Quote is the result of pricing a swap against a pool. Derived, immutable,
// never persisted.
type Quote struct {
	FromAsset       string
	ToAsset         string
	AmountIn        *big.Int
	AmountOut       *big.Int
	AmountOutMin    *big.Int
	SlippagePercent float64
}

// AssetValue is a quantity of a single asset inside a transaction output.
type AssetValue struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// TxOutput is one output of a prepared transaction.
type TxOutput struct {
	Address string       `json:"address"`
	Values  []AssetValue `json:"values"`
}

// PreparedTransaction is the settlement structure handed to the wallet for
// signing and broadcast. Not persisted; a failed signing attempt means the
// caller re-derives from a fresh quote.
type PreparedTransaction struct {
	Outputs        []TxOutput `json:"outputs"`
	ValidUntilSlot uint64     `json:"validUntilSlot"`
}

// UTXO is an unspent output at an address, as reported by the ledger-query
// service.
type UTXO struct {
	TxHash  string       `json:"tx_hash"`
	Index   int          `json:"tx_index"`
	Amounts []AssetValue `json:"amount"`
}
