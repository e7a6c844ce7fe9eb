package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/cfg"
	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

// MovementEvent — сообщение о движении остатка в топике.
type MovementEvent struct {
	EventID    string    `json:"event_id"`
	ProductID  string    `json:"product_id"`
	PurchaseID string    `json:"purchase_id"`
	Kind       string    `json:"kind"`
	Delta      int64     `json:"delta"`
	QtyBefore  int64     `json:"qty_before"`
	QtyAfter   int64     `json:"qty_after"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// WriteMovement публикует движение. Ключом служит id товара, движения одного товара идут по порядку.
func (p *Producer) WriteMovement(ctx context.Context, movement *domain.Movement) error {
	value, err := EncodeMovement(movement)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(movement.ProductID),
		Value: value,
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// EncodeMovement сериализует движение в JSON-событие. event_id совпадает с id движения.
func EncodeMovement(m *domain.Movement) ([]byte, error) {
	return json.Marshal(MovementEvent{
		EventID:    m.ID,
		ProductID:  m.ProductID,
		PurchaseID: m.PurchaseID,
		Kind:       string(m.Kind),
		Delta:      m.Delta,
		QtyBefore:  m.QtyBefore,
		QtyAfter:   m.QtyAfter,
		OccurredAt: m.CreatedAt.UTC(),
	})
}

func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		p.logger.Infof("kafka topic %s created", p.cfg.Topic)
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
