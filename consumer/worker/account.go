package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ruimsramos/filehaven/infra"
	"github.com/ruimsramos/filehaven/infra/produce"
	"github.com/ruimsramos/filehaven/repository"
)

// AccountConsumer handles account deprovision messages: it drains the
// account's bucket and removes it after the relational rows are gone.
type AccountConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewAccountConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *AccountConsumer {
	return &AccountConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

// Start begins consuming account deprovision messages.
func (c *AccountConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.AccountDeprovisionQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register account deprovision consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Account Consumer] Started listening for deprovision jobs on queue: %s", produce.AccountDeprovisionQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Account Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Account Consumer] Channel closed")
					return
				}
				c.handleDeprovision(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *AccountConsumer) handleDeprovision(ctx context.Context, msg amqp.Delivery) {
	c.infra.Logger.InfoWithContextf(ctx, "[Account Consumer] Received message: %s", string(msg.Body))

	var payload produce.DeprovisionAccountMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Account Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	// The drain is idempotent: removing an absent bucket or key is a no-op,
	// so a redelivered message is safe to process again.
	maxRetries := 3
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.infra.Minio.DeleteBucketWithObjects(ctx, payload.BucketName)
		if lastErr == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Account Consumer] Deprovisioned bucket '%s' for account %d", payload.BucketName, payload.UserID)
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, lastErr, "[Account Consumer] Attempt %d/%d failed for bucket '%s': %v", attempt, maxRetries, payload.BucketName, lastErr)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	c.infra.Logger.ErrorWithContextf(ctx, lastErr, "[Account Consumer] Failed after %d attempts, requeueing message %s", maxRetries, payload.MessageID)
	_ = msg.Nack(false, true)
}
