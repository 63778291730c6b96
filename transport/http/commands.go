package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/service"
)

const defaultSlippagePercent = 0.5

// Command names form a closed set; anything else is rejected without
// touching the services.
const (
	commandGetQuote    = "get_quote"
	commandPrepareSwap = "prepare_swap"
)

// CommandHandlers dispatches conversational trading commands. The response
// contract is uniform: {"success": bool, "content": string} with an optional
// data payload, and internal failures never surface as transport errors.
type CommandHandlers struct {
	swapService *service.SwapService
	logger      *zap.Logger
}

// NewCommandHandlers creates the command dispatcher.
func NewCommandHandlers(swapService *service.SwapService, logger *zap.Logger) *CommandHandlers {
	return &CommandHandlers{swapService: swapService, logger: logger}
}

type commandRequest struct {
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params"`
}

type swapCommandParams struct {
	FromToken string   `json:"from_token"`
	ToToken   string   `json:"to_token"`
	Amount    string   `json:"amount"`
	Slippage  *float64 `json:"slippage"`
}

// Dispatch routes a command to its implementation.
func (h *CommandHandlers) Dispatch(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, failure("I couldn't read that request. Send a command and its parameters."))
		return
	}

	session := sessionFromContext(c)

	switch req.Command {
	case commandGetQuote:
		h.getQuote(c, session, req.Params)
	case commandPrepareSwap:
		h.prepareSwap(c, session, req.Params)
	default:
		c.JSON(http.StatusOK, failure(fmt.Sprintf("I don't know the command %q.", req.Command)))
	}
}

func (h *CommandHandlers) getQuote(c *gin.Context, session *core.Session, raw json.RawMessage) {
	params, ok := h.swapParams(c, raw)
	if !ok {
		return
	}

	result, err := h.swapService.Quote(c.Request.Context(), session, params)
	if err != nil {
		h.logger.Warn("quote command failed", zap.Error(err))
		c.JSON(http.StatusOK, failure(describeSwapError(err, params)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": quotePhrase(result, params.Slippage),
		"data":    quoteData(result),
	})
}

func (h *CommandHandlers) prepareSwap(c *gin.Context, session *core.Session, raw json.RawMessage) {
	params, ok := h.swapParams(c, raw)
	if !ok {
		return
	}

	result, err := h.swapService.PrepareSwap(c.Request.Context(), session, params)
	if err != nil {
		h.logger.Warn("prepare-swap command failed", zap.Error(err))
		c.JSON(http.StatusOK, failure(describeSwapError(err, params)))
		return
	}

	data := quoteData(&result.QuoteResult)
	data["transaction"] = result.Prepared

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": quotePhrase(&result.QuoteResult, params.Slippage) + " Sign the transaction in your wallet to proceed.",
		"data":    data,
	})
}

func (h *CommandHandlers) swapParams(c *gin.Context, raw json.RawMessage) (service.SwapParams, bool) {
	var p swapCommandParams
	if err := json.Unmarshal(raw, &p); err != nil || p.FromToken == "" || p.ToToken == "" || p.Amount == "" {
		c.JSON(http.StatusOK, failure("I need from_token, to_token and amount to price a swap."))
		return service.SwapParams{}, false
	}

	slippage := defaultSlippagePercent
	if p.Slippage != nil {
		slippage = *p.Slippage
	}

	return service.SwapParams{
		FromToken: p.FromToken,
		ToToken:   p.ToToken,
		Amount:    p.Amount,
		Slippage:  slippage,
	}, true
}

func quotePhrase(result *service.QuoteResult, slippage float64) string {
	return fmt.Sprintf("You're set to receive approximately %s %s (minimum %s after %g%% slippage).",
		result.AmountOutHuman.String(),
		strings.ToUpper(result.ToTicker),
		result.AmountOutMinHuman.String(),
		slippage)
}

func quoteData(result *service.QuoteResult) gin.H {
	return gin.H{
		"from_asset":     result.Quote.FromAsset,
		"to_asset":       result.Quote.ToAsset,
		"amount_in":      result.Quote.AmountIn.String(),
		"amount_out":     result.Quote.AmountOut.String(),
		"amount_out_min": result.Quote.AmountOutMin.String(),
		"slippage":       result.Quote.SlippagePercent,
	}
}

func describeSwapError(err error, params service.SwapParams) string {
	switch {
	case errors.Is(err, core.ErrAuthenticationRequired):
		return "Connect and authenticate your wallet before trading."
	case errors.Is(err, core.ErrUnknownAsset):
		return fmt.Sprintf("I don't recognize one of %q and %q. Provide the token's on-chain identifier and try again.",
			params.FromToken, params.ToToken)
	case errors.Is(err, core.ErrPoolNotFound):
		return fmt.Sprintf("I couldn't find a liquidity pool for %s/%s.", params.FromToken, params.ToToken)
	case errors.Is(err, core.ErrInvalidSlippage):
		return "Slippage must be between 0 and 100 percent."
	case errors.Is(err, core.ErrInvalidAmount):
		return fmt.Sprintf("%q is not a valid amount.", params.Amount)
	case errors.Is(err, core.ErrNetworkFailure):
		return "The ledger service is unavailable right now. Try again in a moment."
	default:
		return "Something went wrong while pricing the swap. Try again."
	}
}

func failure(content string) gin.H {
	return gin.H{"success": false, "content": content}
}
