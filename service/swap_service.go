package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/ports"
	"github.com/cardex-labs/cardex/swap"
)

// rawAssetIDLength is the minimum length of a policy-id-prefixed on-chain
// asset identifier. Tickers the resolver does not know are accepted verbatim
// when they already look like one.
const rawAssetIDLength = 56

// SwapParams carries a user's swap request in human-readable terms.
type SwapParams struct {
	FromToken string  // ticker or raw on-chain identifier
	ToToken   string  // ticker or raw on-chain identifier
	Amount    string  // amount of the from asset, human-readable units
	Slippage  float64 // percent, 0..100
}

// QuoteResult pairs the raw quote with its human-readable rendering.
type QuoteResult struct {
	Quote             *core.Quote
	FromTicker        string
	ToTicker          string
	AmountOutHuman    decimal.Decimal
	AmountOutMinHuman decimal.Decimal
}

// PrepareResult is a quote plus the assembled settlement structure.
type PrepareResult struct {
	QuoteResult
	Prepared *core.PreparedTransaction
}

// SwapService orchestrates ticker resolution, pool lookup, pricing and
// settlement assembly. Every operation requires an authenticated session.
type SwapService struct {
	resolver *swap.Resolver
	locator  *swap.Locator
	ledger   ports.LedgerQuery
	builder  *swap.SettlementBuilder
	eventPub ports.EventPublisher
	logger   *zap.Logger
}

// NewSwapService creates a new swap service.
func NewSwapService(
	resolver *swap.Resolver,
	locator *swap.Locator,
	ledger ports.LedgerQuery,
	builder *swap.SettlementBuilder,
	eventPub ports.EventPublisher,
	logger *zap.Logger,
) *SwapService {
	return &SwapService{
		resolver: resolver,
		locator:  locator,
		ledger:   ledger,
		builder:  builder,
		eventPub: eventPub,
		logger:   logger,
	}
}

// Quote prices a swap. Reserves are fetched fresh for this call only; the
// price can move before any later settlement and is not re-validated.
func (s *SwapService) Quote(ctx context.Context, session *core.Session, params SwapParams) (*QuoteResult, error) {
	if session == nil {
		return nil, core.ErrAuthenticationRequired
	}
	return s.quote(ctx, params)
}

// PrepareSwap prices a swap and assembles the transaction outputs for the
// session's wallet address to sign.
func (s *SwapService) PrepareSwap(ctx context.Context, session *core.Session, params SwapParams) (*PrepareResult, error) {
	if session == nil {
		return nil, core.ErrAuthenticationRequired
	}

	result, pool, reserves, err := s.quoteWithPool(ctx, params)
	if err != nil {
		return nil, err
	}

	prepared, err := s.builder.Build(result.Quote, pool, reserves, session.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to build settlement: %w", err)
	}

	if err := s.eventPub.PublishSwapPrepared(ctx, session.Address, result.Quote); err != nil {
		s.logger.Warn("failed to publish swap-prepared event", zap.Error(err))
	}

	return &PrepareResult{QuoteResult: *result, Prepared: prepared}, nil
}

// ExecuteSwap hands a prepared transaction to the wallet for signing and
// broadcast. A failed attempt aborts with nothing retained; the caller must
// re-derive from a fresh quote.
func (s *SwapService) ExecuteSwap(ctx context.Context, wallet ports.Wallet, prepared *core.PreparedTransaction) (string, error) {
	if err := wallet.Enable(ctx); err != nil {
		return "", fmt.Errorf("wallet enable failed: %w", err)
	}

	signed, err := wallet.SignTx(ctx, prepared)
	if err != nil {
		return "", fmt.Errorf("wallet signing failed: %w", err)
	}

	txID, err := wallet.SubmitTx(ctx, signed)
	if err != nil {
		return "", fmt.Errorf("transaction submission failed: %w", err)
	}

	s.logger.Info("swap submitted", zap.String("tx_id", txID))
	return txID, nil
}

// CheckBalance sums an asset's quantity across the unspent outputs at an
// address.
func (s *SwapService) CheckBalance(ctx context.Context, address, unit string) (*big.Int, error) {
	utxos, err := s.ledger.AddressUTXOs(ctx, address)
	if err != nil {
		return nil, err
	}

	total := new(big.Int)
	for _, utxo := range utxos {
		for _, amount := range utxo.Amounts {
			if amount.Unit != unit {
				continue
			}
			quantity, ok := new(big.Int).SetString(amount.Quantity, 10)
			if !ok {
				return nil, fmt.Errorf("ledger returned malformed quantity %q: %w", amount.Quantity, core.ErrNetworkFailure)
			}
			total.Add(total, quantity)
		}
	}
	return total, nil
}

func (s *SwapService) quote(ctx context.Context, params SwapParams) (*QuoteResult, error) {
	result, _, _, err := s.quoteWithPool(ctx, params)
	return result, err
}

func (s *SwapService) quoteWithPool(ctx context.Context, params SwapParams) (*QuoteResult, *core.Pool, *core.Reserves, error) {
	fromAsset, err := s.resolveAsset(params.FromToken)
	if err != nil {
		return nil, nil, nil, err
	}
	toAsset, err := s.resolveAsset(params.ToToken)
	if err != nil {
		return nil, nil, nil, err
	}

	pool, err := s.locator.FindPool(ctx, fromAsset, toAsset)
	if err != nil {
		return nil, nil, nil, err
	}

	reserves, err := s.ledger.PoolReserves(ctx, pool.Address)
	if err != nil {
		return nil, nil, nil, err
	}

	// Orient the reserve columns by the pool's own asset order.
	reserveIn, reserveOut := reserves.A, reserves.B
	if pool.AssetA != fromAsset {
		reserveIn, reserveOut = reserves.B, reserves.A
	}

	amount, err := swap.ParseAmount(params.Amount)
	if err != nil {
		return nil, nil, nil, err
	}
	fromDecimals, err := s.assetDecimals(ctx, fromAsset)
	if err != nil {
		return nil, nil, nil, err
	}
	amountIn, err := swap.ToBaseUnits(amount, fromDecimals)
	if err != nil {
		return nil, nil, nil, err
	}

	amountOut, amountOutMin, err := swap.Compute(reserveIn, reserveOut, amountIn, params.Slippage)
	if err != nil {
		return nil, nil, nil, err
	}

	toDecimals, err := s.assetDecimals(ctx, toAsset)
	if err != nil {
		return nil, nil, nil, err
	}

	result := &QuoteResult{
		Quote: &core.Quote{
			FromAsset:       fromAsset,
			ToAsset:         toAsset,
			AmountIn:        amountIn,
			AmountOut:       amountOut,
			AmountOutMin:    amountOutMin,
			SlippagePercent: params.Slippage,
		},
		FromTicker:        params.FromToken,
		ToTicker:          params.ToToken,
		AmountOutHuman:    swap.FromBaseUnits(amountOut, toDecimals),
		AmountOutMinHuman: swap.FromBaseUnits(amountOutMin, toDecimals),
	}
	return result, pool, reserves, nil
}

// resolveAsset resolves a ticker, falling back to accepting a raw on-chain
// identifier when the table has no entry and the input already looks like
// one. Anything else keeps the resolver's guidance error.
func (s *SwapService) resolveAsset(token string) (string, error) {
	id, err := s.resolver.Resolve(token)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, core.ErrUnknownAsset) && looksLikeAssetID(token) {
		return token, nil
	}
	return "", err
}

func (s *SwapService) assetDecimals(ctx context.Context, unit string) (int32, error) {
	if unit == core.Lovelace {
		return core.BaseDecimals, nil
	}
	return s.ledger.AssetDecimals(ctx, unit)
}

func looksLikeAssetID(token string) bool {
	if len(token) < rawAssetIDLength {
		return false
	}
	for _, c := range token {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
