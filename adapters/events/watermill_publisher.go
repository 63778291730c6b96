package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/ports"
)

const (
	topicLogin        = "cardex.auth.login"
	topicLogout       = "cardex.auth.logout"
	topicSwapPrepared = "cardex.swap.prepared"
)

// LoginEvent is published when a wallet authenticates.
type LoginEvent struct {
	UserID    string    `json:"user_id"`
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

// LogoutEvent is published when a session is signed out.
type LogoutEvent struct {
	UserID    string    `json:"user_id"`
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

// SwapPreparedEvent is published when a settlement transaction is assembled.
type SwapPreparedEvent struct {
	Address      string    `json:"address"`
	FromAsset    string    `json:"from_asset"`
	ToAsset      string    `json:"to_asset"`
	AmountIn     string    `json:"amount_in"`
	AmountOutMin string    `json:"amount_out_min"`
	Timestamp    time.Time `json:"timestamp"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a publisher over any Watermill backend.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, userID, address string) error {
	return p.publish(topicLogin, LoginEvent{
		UserID:    userID,
		Address:   address,
		Timestamp: time.Now().UTC(),
	})
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID, address string) error {
	return p.publish(topicLogout, LogoutEvent{
		UserID:    userID,
		Address:   address,
		Timestamp: time.Now().UTC(),
	})
}

// PublishSwapPrepared publishes a swap-prepared event.
func (p *WatermillPublisher) PublishSwapPrepared(ctx context.Context, address string, quote *core.Quote) error {
	return p.publish(topicSwapPrepared, SwapPreparedEvent{
		Address:      address,
		FromAsset:    quote.FromAsset,
		ToAsset:      quote.ToAsset,
		AmountIn:     quote.AmountIn.String(),
		AmountOutMin: quote.AmountOutMin.String(),
		Timestamp:    time.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
