package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type jobType string

const jobTypeCallback jobType = "callback"

// CallbackJob carries everything the worker needs to finish a deferred
// turn: the draft to refine, where to POST the result, and the wall
// clock deadline after which the platform stops accepting the callback.
type CallbackJob struct {
	UserID      string    `json:"user_id"`
	Utterance   string    `json:"utterance"`
	Draft       string    `json:"draft"`
	CallbackURL string    `json:"callback_url"`
	Deadline    time.Time `json:"deadline"`
}

type queuePayload struct {
	ID       string       `json:"id"`
	Kind     jobType      `json:"kind"`
	Callback *CallbackJob `json:"callback,omitempty"`
}

func encodePayload(payload queuePayload) (queuePayload, string, error) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return queuePayload{}, "", fmt.Errorf("dialogue: failed to encode payload: %w", err)
	}

	return payload, string(body), nil
}
