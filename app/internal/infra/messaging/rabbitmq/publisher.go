package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	domorder "example.com/storefront/app/internal/domain/order"
)

const publishTimeout = 5 * time.Second

type orderPlacedItem struct {
	CatalogID int64           `json:"catalog_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

type orderPlacedMessage struct {
	OrderID   int64             `json:"order_id"`
	Reference string            `json:"reference"`
	Total     decimal.Decimal   `json:"total"`
	Items     []orderPlacedItem `json:"items"`
	PlacedAt  time.Time         `json:"placed_at"`
}

// Publisher announces placed orders on a queue for fulfilment workers.
type Publisher struct {
	pool      *ChannelPool
	queueName string
}

func NewPublisher(pool *ChannelPool, queueName string) *Publisher {
	return &Publisher{pool: pool, queueName: queueName}
}

func (p *Publisher) OrderPlaced(ctx context.Context, o *domorder.Order) error {
	body, err := encodeOrderPlaced(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ch, err := p.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("get channel from pool: %w", err)
	}
	defer p.pool.Put(ch)

	err = ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    o.Reference,
		Timestamp:    o.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish order %s: %w", o.Reference, err)
	}
	return nil
}

func encodeOrderPlaced(o *domorder.Order) ([]byte, error) {
	msg := orderPlacedMessage{
		OrderID:   o.ID,
		Reference: o.Reference,
		Total:     o.TotalAmount,
		Items:     make([]orderPlacedItem, 0, len(o.Items)),
		PlacedAt:  o.CreatedAt,
	}
	for _, item := range o.Items {
		msg.Items = append(msg.Items, orderPlacedItem{
			CatalogID: item.CatalogID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return json.Marshal(msg)
}
