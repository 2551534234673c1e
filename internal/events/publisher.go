// Package events notifies other services about processed uploads.
package events

import (
	"context"

	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/logger"
)

type Publisher interface {
	PublishUploadProcessed(ctx context.Context, msg *UploadProcessedMessage) error
	Close() error
}

// NewPublisher returns an AMQP publisher, or one that only logs when no
// broker URL is configured.
func NewPublisher(conf config.AMQPConfig, logger *logger.Logger) Publisher {
	if conf.URL == "" {
		return &noopPublisher{logger: logger.WithComponent("events")}
	}

	return NewClient(conf.URL, conf.Exchange, conf.Queue, logger)
}

type noopPublisher struct {
	logger *logger.Logger
}

func (p *noopPublisher) PublishUploadProcessed(_ context.Context, msg *UploadProcessedMessage) error {
	p.logger.Debug("AMQP not configured, skipping upload notification", "upload_id", msg.UploadID)
	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
