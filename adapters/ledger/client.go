package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/internal/retry"
	"github.com/cardex-labs/cardex/ports"
	"github.com/cardex-labs/cardex/swap"
)

var (
	_ ports.LedgerQuery = (*Client)(nil)
	_ swap.PoolSource   = (*Client)(nil)
)

const maxResponseSize = 10 * 1024 * 1024

var errNotFound = errors.New("resource not found")

// Config holds the ledger-query client settings.
type Config struct {
	BaseURL   string
	ProjectID string        // API key, sent as the project_id header
	Timeout   time.Duration // Per-request timeout
	Retry     retry.Options
}

// Client queries a Blockfrost-compatible ledger API. It implements both
// ports.LedgerQuery and, through PoolByPair, the live tier of pool lookup.
// Requests go through a rate limiter and a circuit breaker; transient
// failures are retried with backoff before surfacing as ErrNetworkFailure.
type Client struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	retryOpts  retry.Options
	logger     *zap.Logger
}

// NewClient creates a ledger client for the given API endpoint.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retryOpts := cfg.Retry
	if retryOpts.MaxAttempts == 0 {
		retryOpts = retry.DefaultOptions()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "LedgerAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:    cfg.BaseURL,
		projectID:  cfg.ProjectID,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		breaker:    breaker,
		retryOpts:  retryOpts,
		logger:     logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// AddressUTXOs returns the unspent outputs held at an address.
func (c *Client) AddressUTXOs(ctx context.Context, address string) ([]core.UTXO, error) {
	var utxos []core.UTXO
	err := c.get(ctx, "/addresses/"+url.PathEscape(address)+"/utxos", &utxos)
	if errors.Is(err, errNotFound) {
		// An address the chain has never seen holds nothing.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return utxos, nil
}

type assetDetails struct {
	Metadata *struct {
		Decimals *int32 `json:"decimals"`
	} `json:"metadata"`
}

// AssetDecimals returns the registered decimal count for an asset. Assets
// without registered metadata report zero.
func (c *Client) AssetDecimals(ctx context.Context, unit string) (int32, error) {
	if unit == core.Lovelace {
		return core.BaseDecimals, nil
	}

	var details assetDetails
	err := c.get(ctx, "/assets/"+url.PathEscape(unit), &details)
	if errors.Is(err, errNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if details.Metadata == nil || details.Metadata.Decimals == nil {
		return 0, nil
	}
	return *details.Metadata.Decimals, nil
}

// PoolReserves reads the pool's current holdings from its address. The base
// currency column feeds A; of the remaining assets, the largest total is
// taken as the pool's other reserve so that incidental tokens at the script
// address do not skew the quote.
func (c *Client) PoolReserves(ctx context.Context, poolAddress string) (*core.Reserves, error) {
	utxos, err := c.AddressUTXOs(ctx, poolAddress)
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return nil, fmt.Errorf("%w: no outputs at pool address %s", core.ErrPoolNotFound, poolAddress)
	}

	base := new(big.Int)
	others := make(map[string]*big.Int)
	for _, utxo := range utxos {
		for _, value := range utxo.Amounts {
			quantity, ok := new(big.Int).SetString(value.Quantity, 10)
			if !ok {
				return nil, fmt.Errorf("%w: malformed quantity %q at %s", core.ErrNetworkFailure, value.Quantity, poolAddress)
			}
			if value.Unit == core.Lovelace {
				base.Add(base, quantity)
				continue
			}
			if total, seen := others[value.Unit]; seen {
				total.Add(total, quantity)
			} else {
				others[value.Unit] = quantity
			}
		}
	}

	other := new(big.Int)
	for _, total := range others {
		if total.Cmp(other) > 0 {
			other = total
		}
	}

	return &core.Reserves{A: base, B: other}, nil
}

// PoolByPair asks the live pool index for a pool holding the asset pair.
func (c *Client) PoolByPair(ctx context.Context, assetA, assetB string) (*core.Pool, error) {
	query := url.Values{}
	query.Set("asset_a", assetA)
	query.Set("asset_b", assetB)

	var pool core.Pool
	err := c.get(ctx, "/pools?"+query.Encode(), &pool)
	if errors.Is(err, errNotFound) {
		return nil, core.ErrPoolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", core.ErrNetworkFailure, err)
	}

	err := retry.Do(ctx, c.retryOpts, func() error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doRequest(ctx, path, out)
		})
		return err
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, errNotFound) {
		return errNotFound
	}
	c.logger.Warn("ledger request failed",
		zap.String("path", path),
		zap.Error(err))
	return fmt.Errorf("%w: %v", core.ErrNetworkFailure, err)
}

func (c *Client) doRequest(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	if c.projectID != "" {
		req.Header.Set("project_id", c.projectID)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return retry.Permanent(errNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	default:
		return retry.Permanent(fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return retry.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
