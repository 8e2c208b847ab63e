package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() Event {
	return Event{
		Type:          EventReservationConfirmed,
		ReservationID: 10,
		VenueID:       1,
		RequesterID:   9,
		Date:          "2030-06-01",
		StartSlot:     "10:00",
		Attendees:     3,
	}
}

func TestPublishQueuesEvent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := &Service{redis: client}

	mock.Regexp().ExpectLPush(queueKey, `.*reservation\.confirmed.*`).SetVal(1)

	err := svc.Publish(context.Background(), testEvent())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishQueueFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := &Service{redis: client}

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(errors.New("redis down"))

	err := svc.Publish(context.Background(), testEvent())
	assert.Error(t, err)
}

func TestQueueLength(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := &Service{redis: client}

	mock.ExpectLLen(queueKey).SetVal(4)

	assert.Equal(t, int64(4), svc.QueueLength(context.Background()))
}

func TestDeliverPostsEvent(t *testing.T) {
	var received Event
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer webhook.Close()

	svc := &Service{
		client:     resty.New().SetTimeout(2 * time.Second),
		webhookURL: webhook.URL,
	}

	err := svc.deliver(context.Background(), testEvent())
	require.NoError(t, err)
	assert.Equal(t, EventReservationConfirmed, received.Type)
	assert.Equal(t, 10, received.ReservationID)
}

func TestDeliverErrorStatus(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer webhook.Close()

	svc := &Service{
		client:     resty.New().SetTimeout(2 * time.Second),
		webhookURL: webhook.URL,
	}

	err := svc.deliver(context.Background(), testEvent())

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, http.StatusBadGateway, deliveryErr.StatusCode)
}

// No webhook configured means events are consumed without delivery.
func TestDeliverWithoutWebhook(t *testing.T) {
	svc := &Service{client: resty.New()}

	assert.NoError(t, svc.deliver(context.Background(), testEvent()))
}
