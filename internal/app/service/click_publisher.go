package service

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/slugster/slugster/internal/app/model"
	infraprom "github.com/slugster/slugster/internal/infra/prometheus"
)

// ClickRecorder accepts fully classified click records for eventual
// persistence. Recording is best-effort relative to the redirect response.
type ClickRecorder interface {
	Record(ctx context.Context, click *model.Click) error
}

// ClickPublisher publishes click records to NATS JetStream.
type ClickPublisher struct {
	js nats.JetStreamContext
}

// NewClickPublisher creates a new click record publisher.
func NewClickPublisher(js nats.JetStreamContext) *ClickPublisher {
	return &ClickPublisher{js: js}
}

// Record marshals the click and publishes it onto the click stream.
func (p *ClickPublisher) Record(ctx context.Context, click *model.Click) error {
	data, err := json.Marshal(click)
	if err != nil {
		return err
	}

	if _, err := p.js.Publish(model.ClickStreamSubject, data); err != nil {
		infraprom.ClickPublishFailures.Inc()
		return err
	}

	infraprom.ClicksPublished.Inc()
	return nil
}
