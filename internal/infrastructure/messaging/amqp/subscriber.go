package amqp

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Subscriber トランザクションイベントを購読する
type Subscriber struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
}

// NewSubscriber ブローカーに接続しexchangeを宣言
func NewSubscriber(url, exchange, routingKey string) (*Subscriber, error) {
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

	return &Subscriber{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// Consume 一時キューをバインドし、ctxが終了するまでメッセージをhandlerに渡す
// queueが空の場合はブローカーが名前を割り当てる排他キューを使う。
func (s *Subscriber) Consume(ctx context.Context, queue string, handler func(*TransactionRecordedMessage) error) error {
	exclusive := queue == ""
	q, err := s.channel.QueueDeclare(
		queue,      // name
		!exclusive, // durable
		exclusive,  // delete when unused
		exclusive,  // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := s.channel.QueueBind(q.Name, s.routingKey, s.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := s.channel.ConsumeWithContext(
		ctx,
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		exclusive,
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := TransactionRecordedMessageFromJSON(delivery.Body)
			if err != nil {
				_ = delivery.Nack(false, false)
				continue
			}

			if err := handler(msg); err != nil {
				_ = delivery.Nack(false, true)
				return fmt.Errorf("handle message %d: %w", msg.TxID, err)
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close チャネルと接続を閉じる
func (s *Subscriber) Close() error {
	if s.channel != nil {
		_ = s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
