package persister

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/cart/pkg/store"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
)

const localKeyPrefix = "guestCart:"

func LocalKey(deviceID string) string {
	return localKeyPrefix + deviceID
}

// Local keeps the cart of one device under guestCart:<deviceID>.
type Local struct {
	cache    redis.Cmdable
	deviceID string
}

var _ store.Persister = Local{}

func NewLocal(cache redis.Cmdable, deviceID string) Local {
	return Local{cache: cache, deviceID: deviceID}
}

func (p Local) Target() string {
	return store.TargetLocal
}

func (p Local) Load(c context.Context) ([]response.CartItem, bool, error) {
	c, span := otel.Tracer.Start(c, "Local Load")
	defer span.End()

	key := LocalKey(p.deviceID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Local Load").
		Str(log.KeyCacheKey, key).
		Logger()

	logger.Trace().Msg("getting cart from cache")
	value, err := p.cache.Get(c, key).Result()
	if errors.Is(err, redis.Nil) {
		logger.Trace().Msg("cart not found in cache")
		return nil, false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed getting cart key=%s with error=%w", key, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}

	items := []response.CartItem{}
	if err = json.Unmarshal([]byte(value), &items); err != nil {
		err = fmt.Errorf("failed decoding cart key=%s with error=%w", key, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	logger.Trace().Int(log.KeyCartItemsCount, len(items)).Msg("got cart from cache")
	return items, true, nil
}

func (p Local) Save(c context.Context, items []response.CartItem) error {
	c, span := otel.Tracer.Start(c, "Local Save")
	defer span.End()

	key := LocalKey(p.deviceID)
	if items == nil {
		items = []response.CartItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed encoding cart with error=%w", err)
		otel.RecordError(err, span)
		return err
	}

	if err = p.cache.Set(c, key, encoded, 0).Err(); err != nil {
		err = fmt.Errorf("failed setting cart key=%s with error=%w", key, err)
		otel.RecordError(err, span)
		return err
	}
	return nil
}

func (p Local) Delete(c context.Context) error {
	c, span := otel.Tracer.Start(c, "Local Delete")
	defer span.End()

	key := LocalKey(p.deviceID)
	if err := p.cache.Del(c, key).Err(); err != nil {
		err = fmt.Errorf("failed deleting cart key=%s with error=%w", key, err)
		otel.RecordError(err, span)
		return err
	}
	return nil
}
