package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

const (
	orderEventsTopic = "orders.order-events"
	consumerGroup    = "cart-service-consumer"

	// Only a confirmed order clears the cart; other order events pass by.
	orderConfirmedType = "OrderConfirmedEvent"
)

// CartClearer is the slice of the cart service the consumer needs.
type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

// Poller consumes downstream order events and clears the owning user's
// cart once an order is confirmed. This is the only path that deletes a
// cart; checkout initiation itself never touches it.
type Poller struct {
	carts  CartClearer
	reader *kafka.Reader
}

func NewPoller(carts CartClearer, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    orderEventsTopic,
		GroupID:  consumerGroup,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("error reading order event: %v", err)
			}
			continue
		}

		if err := p.handleMessage(ctx, eventType(m.Headers), m.Value); err != nil {
			log.Printf("order event handling failed: %v", err)
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing order events reader: %v", err)
	}
}

type orderConfirmedPayload struct {
	UserID string `json:"user_id"`
}

func (p *Poller) handleMessage(ctx context.Context, kind string, value []byte) error {
	if kind != orderConfirmedType {
		return nil
	}

	var payload orderConfirmedPayload
	if err := json.Unmarshal(value, &payload); err != nil {
		return fmt.Errorf("parse order confirmed event: %w", err)
	}
	if payload.UserID == "" {
		return fmt.Errorf("order confirmed event missing user_id")
	}

	if err := p.carts.ClearCart(ctx, payload.UserID); err != nil {
		return fmt.Errorf("clear cart for user %s: %w", payload.UserID, err)
	}
	return nil
}

func eventType(headers []kafka.Header) string {
	for _, h := range headers {
		if h.Key == "eventType" {
			return string(h.Value)
		}
	}
	return ""
}
