package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/hellocabs/hellocabs/internal/lifecycle"
	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/segmentio/kafka-go"
)

// RideEvent is the payload published on every ride status change.
type RideEvent struct {
	RideID     int64            `json:"ride_id"`
	BookingRef string           `json:"booking_ref"`
	CustomerID int64            `json:"customer_id"`
	CabID      *int64           `json:"cab_id,omitempty"`
	Status     lifecycle.Status `json:"status"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type Publisher interface {
	PublishStatusChange(ctx context.Context, ride *models.Ride) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishStatusChange(ctx context.Context, ride *models.Ride) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	event := RideEvent{
		RideID:     ride.ID,
		BookingRef: ride.BookingRef,
		CustomerID: ride.CustomerID,
		CabID:      ride.CabID,
		Status:     ride.Status,
		OccurredAt: time.Now(),
	}
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := []byte(strconv.FormatInt(ride.ID, 10))
	return p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: b})
}

func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// NopPublisher is used in tests and when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishStatusChange(context.Context, *models.Ride) error { return nil }
func (NopPublisher) Close() error                                            { return nil }
