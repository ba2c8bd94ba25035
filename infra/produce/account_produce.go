package produce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	AccountExchange              = "account.exchange"
	AccountDeprovisionQueue      = "account.deprovision"
	AccountDeprovisionRoutingKey = "account.deprovision"
)

type AccountService struct {
	channel *amqp.Channel
}

// DeprovisionAccountMessage asks the consumer to drain and remove the
// account's bucket after the relational rows are already gone.
type DeprovisionAccountMessage struct {
	MessageID  string `json:"message_id"`
	UserID     int64  `json:"user_id"`
	BucketName string `json:"bucket_name"`
	Timestamp  int64  `json:"timestamp"`
}

func InitAccountService(channel *amqp.Channel) *AccountService {
	service := &AccountService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		AccountExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Account exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		AccountDeprovisionQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Account deprovision queue: " + err.Error())
	}

	err = channel.QueueBind(
		AccountDeprovisionQueue,
		AccountDeprovisionRoutingKey,
		AccountExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Account deprovision queue: " + err.Error())
	}

	return service
}

func (s *AccountService) PublishDeprovisionAccount(ctx context.Context, userID int64, bucketName string) error {
	message := DeprovisionAccountMessage{
		MessageID:  uuid.NewString(),
		UserID:     userID,
		BucketName: bucketName,
		Timestamp:  time.Now().Unix(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		AccountExchange,
		AccountDeprovisionRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    message.MessageID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}
