package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of an AMQP channel the notifier needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPNotifier publishes reset messages to a durable direct exchange for a mailer to consume.
type AMQPNotifier struct {
	conn         *amqp091.Connection
	channel      Publisher
	exchangeName string
	queueName    string
	mu           sync.Mutex
}

func NewAMQPNotifier(url, exchangeName, queueName string) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(channel, exchangeName, queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return &AMQPNotifier{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}, nil
}

// NewAMQPNotifierWithPublisher wires an already configured channel.
func NewAMQPNotifierWithPublisher(publisher Publisher, exchangeName, queueName string) *AMQPNotifier {
	return &AMQPNotifier{channel: publisher, exchangeName: exchangeName, queueName: queueName}
}

func declareTopology(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) SendPasswordReset(ctx context.Context, reset PasswordReset) error {
	body, err := NewPasswordResetMessage(reset).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp091 channels are not safe for concurrent publishes
	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.channel.PublishWithContext(
		ctx,
		n.exchangeName, // exchange
		n.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         MessageTypePasswordReset,
			Expiration:   expiration(reset.ExpiresAt),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Printf("INFO: Published password reset message for user %s to exchange %s", reset.UserID, n.exchangeName)
	return nil
}

// expiration is the per-message TTL in milliseconds; a reset mail is useless once the token expires.
func expiration(expiresAt time.Time) string {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return fmt.Sprintf("%d", ttl.Milliseconds())
}

func (n *AMQPNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
