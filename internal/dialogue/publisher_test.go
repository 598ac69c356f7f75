package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

func TestPublisherEnqueueCallback(t *testing.T) {
	queue := &stubQueue{}
	publisher := NewPublisher(queue, logging.Default())

	deadline := time.Now().Add(55 * time.Second).UTC().Truncate(time.Second)
	job := CallbackJob{
		UserID:      "user-1",
		Utterance:   "2박 호텔 바다",
		Draft:       "초안 본문",
		CallbackURL: "https://callback.example/turn",
		Deadline:    deadline,
	}
	if err := publisher.EnqueueCallback(context.Background(), job); err != nil {
		t.Fatalf("enqueue returned error: %v", err)
	}
	if len(queue.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(queue.sent))
	}

	var payload queuePayload
	if err := json.Unmarshal([]byte(queue.sent[0]), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Kind != jobTypeCallback {
		t.Fatalf("expected jobType callback, got %s", payload.Kind)
	}
	if payload.ID == "" {
		t.Fatal("expected generated job ID")
	}
	if payload.Callback == nil {
		t.Fatal("expected callback body")
	}
	if payload.Callback.UserID != "user-1" || payload.Callback.Draft != "초안 본문" {
		t.Fatalf("callback fields did not survive encode: %#v", payload.Callback)
	}
	if !payload.Callback.Deadline.Equal(deadline) {
		t.Fatalf("expected deadline %s, got %s", deadline, payload.Callback.Deadline)
	}
}

func TestPublisherEnqueueCallbackSendError(t *testing.T) {
	queue := &stubQueue{sendErr: errors.New("queue down")}
	publisher := NewPublisher(queue, logging.Default())

	err := publisher.EnqueueCallback(context.Background(), CallbackJob{UserID: "user-1"})
	if err == nil {
		t.Fatal("expected error when queue send fails")
	}
}

type stubQueue struct {
	sent    []string
	sendErr error
}

func (s *stubQueue) Send(ctx context.Context, body string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, body)
	return nil
}

func (s *stubQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	return nil, context.Canceled
}

func (s *stubQueue) Delete(ctx context.Context, receiptHandle string) error {
	return nil
}
