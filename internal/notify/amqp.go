package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
)

const routingKeyApproved = "contract.approved"

type approvedEvent struct {
	EventID        string    `json:"event_id"`
	ContractID     uint      `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	ClientID       uint      `json:"client_id"`
	WorkerID       uint      `json:"worker_id"`
	TotalValue     float64   `json:"total_value"`
	Currency       string    `json:"currency"`
	ApprovedAt     time.Time `json:"approved_at"`
}

// AMQPNotifier publishes lifecycle events to a topic exchange. The
// messaging side (mail, SMS, dashboards) subscribes downstream.
type AMQPNotifier struct {
	conn     *amqp.Connection
	exchange string
}

func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	defer channel.Close()

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPNotifier{conn: conn, exchange: exchange}, nil
}

func (n *AMQPNotifier) ContractApproved(ctx context.Context, contract *model.Contract) error {
	approvedAt := time.Now()
	if contract.ApprovedAt != nil {
		approvedAt = *contract.ApprovedAt
	}

	body, err := json.Marshal(approvedEvent{
		EventID:        uuid.NewString(),
		ContractID:     contract.ID,
		ContractNumber: contract.ContractNumber,
		ClientID:       contract.ClientID,
		WorkerID:       contract.WorkerID,
		TotalValue:     contract.TotalContractValue,
		Currency:       contract.Currency,
		ApprovedAt:     approvedAt,
	})
	if err != nil {
		return err
	}

	channel, err := n.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer channel.Close()

	return channel.PublishWithContext(ctx, n.exchange, routingKeyApproved, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    approvedAt,
		Body:         body,
	})
}

func (n *AMQPNotifier) Close() error {
	return n.conn.Close()
}
