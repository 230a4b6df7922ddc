package persister

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/cart/pkg/store"
	"github.com/Alturino/focushoney/internal/repository"
)

// Remote keeps the cart of one user as the carts/{uid} document.
type Remote struct {
	store  repository.Store
	userID uuid.UUID
}

var _ store.Persister = Remote{}

func NewRemote(s repository.Store, userID uuid.UUID) Remote {
	return Remote{store: s, userID: userID}
}

func (p Remote) Target() string {
	return store.TargetRemote
}

func (p Remote) Load(c context.Context) ([]response.CartItem, bool, error) {
	return p.store.FindCart(c, p.userID)
}

func (p Remote) Save(c context.Context, items []response.CartItem) error {
	return p.store.SaveCart(c, p.userID, items)
}

func (p Remote) Delete(c context.Context) error {
	return p.store.DeleteCart(c, p.userID)
}

// Factory builds persisters for the session resolver.
type Factory struct {
	cache redis.Cmdable
	store repository.Store
}

func NewFactory(cache redis.Cmdable, s repository.Store) Factory {
	return Factory{cache: cache, store: s}
}

func (f Factory) Local(deviceID string) store.Persister {
	return NewLocal(f.cache, deviceID)
}

func (f Factory) Remote(userID uuid.UUID) store.Persister {
	return NewRemote(f.store, userID)
}
