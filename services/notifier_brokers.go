package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ducali/ducali-api/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// RedisChannelPrefix is followed by the user id; subscribers listen per user
const RedisChannelPrefix = "ducali:notifications:"

// RedisNotifier publishes notifications on a per-user pub/sub channel
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier connects to addr and verifies the server answers
func NewRedisNotifier(addr, password string) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisNotifierFromClient(client), nil
}

func NewRedisNotifierFromClient(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Channel is the pub/sub channel for a user
func (n *RedisNotifier) Channel(userID uint) string {
	return RedisChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (n *RedisNotifier) Notify(ctx context.Context, userID uint, kind string, payload map[string]interface{}) error {
	body, err := NewEnvelope(userID, kind, payload).marshal()
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.Channel(userID), body).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Name() string { return config.NotifierRedis }
func (n *RedisNotifier) Close() error { return n.client.Close() }

// KafkaNotifier writes notifications to a topic keyed by user id,
// so one user's notifications stay ordered within a partition
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return NewKafkaNotifierFromWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	})
}

func NewKafkaNotifierFromWriter(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) Notify(ctx context.Context, userID uint, kind string, payload map[string]interface{}) error {
	env := NewEnvelope(userID, kind, payload)
	body, err := env.marshal()
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(userID), 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(kind)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to kafka: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Name() string { return config.NotifierKafka }
func (n *KafkaNotifier) Close() error { return n.writer.Close() }

// AMQPExchange is the fanout exchange notifications are published to
const AMQPExchange = "ducali.notifications"

// AMQPNotifier publishes notifications to a fanout exchange
type AMQPNotifier struct {
	conn *amqp.Connection
}

// NewAMQPNotifier dials url and declares the exchange
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(AMQPExchange, "fanout", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &AMQPNotifier{conn: conn}, nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, userID uint, kind string, payload map[string]interface{}) error {
	env := NewEnvelope(userID, kind, payload)
	body, err := env.marshal()
	if err != nil {
		return err
	}

	ch, err := n.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, AMQPExchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    env.EventID,
		Type:         kind,
		Timestamp:    env.SentAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) Name() string { return config.NotifierAMQP }
func (n *AMQPNotifier) Close() error { return n.conn.Close() }
