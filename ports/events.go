package ports

import (
	"context"

	"github.com/cardex-labs/cardex/core"
)

// EventPublisher notifies other instances about auth and trading activity.
type EventPublisher interface {
	PublishLogin(ctx context.Context, userID, address string) error
	PublishLogout(ctx context.Context, userID, address string) error
	PublishSwapPrepared(ctx context.Context, address string, quote *core.Quote) error
}
