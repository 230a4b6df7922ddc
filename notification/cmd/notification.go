package cmd

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/Alturino/focushoney/notification/internal/listener"
	"github.com/Alturino/focushoney/order/pkg/event"
)

// ListenOrderCreated blocks until c is done.
func ListenOrderCreated(c context.Context, cache redis.UniversalClient) error {
	return event.Subscribe(c, cache, listener.NotifyOwner)
}
