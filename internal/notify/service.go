package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"venueslot/internal/logger"
	"venueslot/internal/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"

	maxTries = 3
)

const (
	EventReservationConfirmed   = "reservation.confirmed"
	EventReservationPending     = "reservation.pending"
	EventReservationCancelled   = "reservation.cancelled"
	EventReservationRescheduled = "reservation.rescheduled"
	EventReservationCompleted   = "reservation.completed"
)

// Event is what the booking engine hands to the external notification
// collaborator. Delivery is best-effort and never blocks or rolls back the
// transaction that produced it.
type Event struct {
	Type          string    `json:"type"`
	ReservationID int       `json:"reservation_id"`
	VenueID       int       `json:"venue_id"`
	RequesterID   int       `json:"requester_id"`
	Date          string    `json:"date"`
	StartSlot     string    `json:"start_slot"`
	Attendees     int       `json:"attendees"`
	OccurredAt    time.Time `json:"occurred_at"`
	Tries         int       `json:"tries"`
}

// Publisher is the narrow interface the booking services depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Service struct {
	redis      *redis.Client
	client     *resty.Client
	webhookURL string
}

func New(redisAddr, webhookURL string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		client:     resty.New().SetTimeout(10 * time.Second),
		webhookURL: webhookURL,
	}
}

// Publish queues the event for asynchronous delivery. Errors are reported to
// the caller for logging only; admission/cancellation outcomes must not
// depend on them.
func (s *Service) Publish(ctx context.Context, event Event) error {
	event.OccurredAt = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("Failed to marshal notification event: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue %s event for reservation %d: %v", event.Type, event.ReservationID, err)
		metrics.RecordNotification(event.Type, "queue_failed")
		return err
	}

	logger.Infof("Notification queued: %s for reservation %d", event.Type, event.ReservationID)
	return nil
}

// Start runs the delivery worker until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var event Event
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		logger.Errorf("Bad notification payload: %v", err)
		return
	}

	event.Tries++
	if err := s.deliver(ctx, event); err != nil {
		logger.Errorf("Failed to deliver %s for reservation %d: %v", event.Type, event.ReservationID, err)
		metrics.RecordNotification(event.Type, "failed")

		if event.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(event)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying %s for reservation %d (attempt %d)", event.Type, event.ReservationID, event.Tries+1)
		} else {
			s.saveFailed(event, err)
		}
		return
	}

	metrics.RecordNotification(event.Type, "delivered")
	logger.Infof("Notification delivered: %s for reservation %d", event.Type, event.ReservationID)
}

func (s *Service) deliver(ctx context.Context, event Event) error {
	if s.webhookURL == "" {
		// no collaborator configured, drop on the floor
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(s.webhookURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &DeliveryError{StatusCode: resp.StatusCode()}
	}

	return nil
}

func (s *Service) saveFailed(event Event, err error) {
	failed := map[string]interface{}{
		"event": event,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s for reservation %d", event.Type, event.ReservationID)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

type DeliveryError struct {
	StatusCode int
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.StatusCode)
}
