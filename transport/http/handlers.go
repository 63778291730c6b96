package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/service"
)

// AuthHandlers contains HTTP handlers for the authentication endpoints.
type AuthHandlers struct {
	authService  *service.AuthService
	secureCookie bool
}

// NewAuthHandlers creates new auth handlers. secureCookie marks the session
// cookie Secure, which production deployments should always do.
func NewAuthHandlers(authService *service.AuthService, secureCookie bool) *AuthHandlers {
	return &AuthHandlers{
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// Challenge composes the message a wallet must sign to authenticate.
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challenge, err := h.authService.BeginChallenge(req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": challenge.Message,
		"nonce":   challenge.Nonce,
	})
}

// Login verifies a signed challenge and establishes a session cookie.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Message   string                `json:"message" binding:"required"`
		Signature core.SignaturePackage `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, token, err := h.authService.VerifySignature(c.Request.Context(), req.Message, &req.Signature)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Authentication failed"

		switch {
		case errors.Is(err, core.ErrMessageMismatch):
			statusCode = http.StatusBadRequest
			errorMsg = "Signed message does not match the challenge"
		case errors.Is(err, core.ErrSignatureReused):
			statusCode = http.StatusUnauthorized
			errorMsg = "Signature has already been used"
		case errors.Is(err, core.ErrInvalidSignature):
			statusCode = http.StatusUnauthorized
			errorMsg = "Invalid signature"
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	setSessionCookie(c, token, h.authService.SessionTTL(), h.secureCookie)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"address":       session.Address,
		"expires_at":    session.ExpiresAt,
	})
}

// Session reports whether the request carries a valid session. A missing or
// invalid cookie is not an error; it simply reports unauthenticated so the
// client falls back to the sign-in flow.
func (h *AuthHandlers) Session(c *gin.Context) {
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	session := h.authService.CheckAuth(token)
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"address":       session.Address,
		"expires_at":    session.ExpiresAt,
	})
}

// Reauth issues a fresh session for an already known wallet address without
// a new signature ceremony.
func (h *AuthHandlers) Reauth(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, token, err := h.authService.SilentReauthenticate(c.Request.Context(), req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to re-authenticate"})
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	setSessionCookie(c, token, h.authService.SessionTTL(), h.secureCookie)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"address":       session.Address,
		"expires_at":    session.ExpiresAt,
	})
}

// Logout publishes the logout event and deletes the session cookie. Already
// issued tokens stay structurally valid until expiry; there is no server-side
// revocation list.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookie); err == nil {
		h.authService.SignOut(c.Request.Context(), h.authService.CheckAuth(token))
	}
	clearSessionCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// SwapHandlers contains HTTP handlers for the trading endpoints.
type SwapHandlers struct {
	swapService *service.SwapService
}

// NewSwapHandlers creates new swap handlers.
func NewSwapHandlers(swapService *service.SwapService) *SwapHandlers {
	return &SwapHandlers{swapService: swapService}
}

// Balance returns an asset total at an address. The address defaults to the
// session's wallet and the unit to the base currency.
func (h *SwapHandlers) Balance(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	address := c.DefaultQuery("address", session.Address)
	unit := c.DefaultQuery("unit", core.Lovelace)

	balance, err := h.swapService.CheckBalance(c.Request.Context(), address, unit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to query balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":  address,
		"unit":     unit,
		"quantity": balance.String(),
	})
}
