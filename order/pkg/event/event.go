// Package event carries order-created notices over redis pub/sub.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/internal/common/constants"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/order/pkg/response"
)

type OrderCreated struct {
	Order response.Order `json:"order"`
}

type Publisher struct {
	cache redis.Cmdable
}

func NewPublisher(cache redis.Cmdable) *Publisher {
	return &Publisher{cache: cache}
}

func (p *Publisher) PublishOrderCreated(c context.Context, order response.Order) error {
	c, span := otel.Tracer.Start(c, "Publisher PublishOrderCreated")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Publisher PublishOrderCreated").
		Str(log.KeyChannel, constants.ChannelOrderCreated).
		Str(log.KeyOrderID, order.ID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "marshaling event").Logger()
	logger.Trace().Msg("marshaling event")
	payload, err := json.Marshal(OrderCreated{Order: order})
	if err != nil {
		err = fmt.Errorf("failed marshaling event with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("marshaled event")

	logger = logger.With().Str(log.KeyProcess, "publishing event").Logger()
	logger.Info().Msg("publishing event")
	if err = p.cache.Publish(c, constants.ChannelOrderCreated, payload).Err(); err != nil {
		err = fmt.Errorf("failed publishing event with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("published event")

	return nil
}

type Handler func(c context.Context, event OrderCreated) error

// Subscribe blocks until c is done. A handler error is logged and the next message is read.
func Subscribe(c context.Context, cache redis.UniversalClient, handler Handler) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "event Subscribe").
		Str(log.KeyChannel, constants.ChannelOrderCreated).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "subscribing").Logger()
	logger.Info().Msg("subscribing")
	pubsub := cache.Subscribe(c, constants.ChannelOrderCreated)
	defer pubsub.Close()
	if _, err := pubsub.Receive(c); err != nil {
		err = fmt.Errorf("failed subscribing with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stop receiving events")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			handleMessage(c, msg, handler)
		}
	}
}

func handleMessage(c context.Context, msg *redis.Message, handler Handler) {
	c, span := otel.Tracer.Start(c, "event handleMessage")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "event handleMessage").
		Str(log.KeyChannel, msg.Channel).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "unmarshaling event").Logger()
	event := OrderCreated{}
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		err = fmt.Errorf("failed unmarshaling event with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "handling event").
		Str(log.KeyOrderID, event.Order.ID.String()).
		Logger()
	logger.Info().Msg("handling event")
	if err := handler(logger.WithContext(c), event); err != nil {
		err = fmt.Errorf("failed handling event with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("handled event")
}
