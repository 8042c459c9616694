package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/slugster/slugster/internal/app/model"
	apprepository "github.com/slugster/slugster/internal/app/repository"
	infraprom "github.com/slugster/slugster/internal/infra/prometheus"
	"go.uber.org/zap"
)

// ClickConsumer drains the click stream into the click log. Persisting
// through the stream keeps the redirect path free of click-log latency;
// the counter on the link and the click row are deliberately not written
// in one transaction.
type ClickConsumer struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	repo   apprepository.ClickRepository
}

// NewClickConsumer creates a new click record consumer.
func NewClickConsumer(js nats.JetStreamContext, logger *zap.Logger, repo apprepository.ClickRepository) *ClickConsumer {
	return &ClickConsumer{js: js, logger: logger, repo: repo}
}

// Start ensures the stream and durable consumer exist and begins
// consuming on a background goroutine.
func (c *ClickConsumer) Start() error {
	_, err := c.js.StreamInfo(model.ClickStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.ClickStreamName, model.ClickConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.ClickStreamName, &nats.ConsumerConfig{
			Durable:   model.ClickConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ClickStreamSubject, model.ClickConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *ClickConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch click messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var click model.Click
			if err := json.Unmarshal(msg.Data, &click); err != nil {
				c.logger.Error("failed to unmarshal click record", zap.Error(err))
				msg.Nak()
				continue
			}

			if err := c.repo.Append(ctx, &click); err != nil {
				c.logger.Error("failed to store click record",
					zap.String("id", click.ID),
					zap.String("slug", click.Slug),
					zap.Error(err))
				msg.Nak()
				continue
			}

			infraprom.ClicksPersisted.Inc()
			c.logger.Debug("click record stored",
				zap.String("id", click.ID),
				zap.String("slug", click.Slug),
				zap.String("device", click.Device),
			)

			msg.Ack()
		}
	}
}
