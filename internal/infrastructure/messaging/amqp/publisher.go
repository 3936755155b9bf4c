package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"txhistory-server/internal/domain/transaction"
)

const publishTimeout = 5 * time.Second

// channel 使用するamqp091.Channelのメソッド
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher トランザクションイベントをdirect exchangeへ配信する
type Publisher struct {
	mu         sync.Mutex
	conn       *amqp091.Connection
	channel    channel
	exchange   string
	routingKey string
	tracer     trace.Tracer
	now        func() time.Time
}

// NewPublisher ブローカーに接続しexchangeを宣言
func NewPublisher(url, exchange, routingKey string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	p := newPublisher(ch, exchange, routingKey)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange, routingKey string) *Publisher {
	return &Publisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		tracer:     otel.Tracer("amqp-publisher"),
		now:        time.Now,
	}
}

func declareExchange(ch *amqp091.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// PublishTransactionRecorded トランザクション記録イベントを配信
func (p *Publisher) PublishTransactionRecorded(ctx context.Context, txn *transaction.Transaction) error {
	ctx, span := p.tracer.Start(ctx, "Publisher.PublishTransactionRecorded", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination.name", p.exchange),
		attribute.String("messaging.rabbitmq.routing_key", p.routingKey),
		attribute.Int64("tx_id", int64(txn.ID())),
	)

	now := p.now()
	body, err := NewTransactionRecordedMessage(txn, now).ToJSON()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// チャネルは並行利用できない
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    fmt.Sprintf("tx-%d", txn.ID()),
			Type:         EventTypeTransactionRecorded,
			Timestamp:    now,
			Body:         body,
		},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("publish message: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "published")
	return nil
}

// Close チャネルと接続を閉じる
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher 配信を行わないPublisher
type NoopPublisher struct{}

// PublishTransactionRecorded 何もしない
func (NoopPublisher) PublishTransactionRecorded(context.Context, *transaction.Transaction) error {
	return nil
}

// Close 何もしない
func (NoopPublisher) Close() error {
	return nil
}
