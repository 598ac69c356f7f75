package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wonpyo/jeju-chatpi/internal/kakao"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

var callbackTracer = otel.Tracer("chatpi.internal.dialogue.callback")

// CallbackReply is the final answer for a deferred turn, addressed to
// the one-shot URL the platform supplied with the original request.
type CallbackReply struct {
	URL  string
	Text string
}

// CallbackMessenger delivers the deferred answer out of band.
type CallbackMessenger interface {
	DeliverCallback(ctx context.Context, reply CallbackReply) error
}

const (
	callbackAttempts = 2
	callbackBackoff  = 500 * time.Millisecond
)

// HTTPCallbackSender posts a plain-text bubble to the callback URL.
// Delivery is best effort: one retry after a short fixed backoff, then
// give up. The URL is single-use and expires, so longer retry schedules
// buy nothing.
type HTTPCallbackSender struct {
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPCallbackSender builds a sender with a bounded request timeout.
func NewHTTPCallbackSender(logger *logging.Logger) *HTTPCallbackSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPCallbackSender{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ CallbackMessenger = (*HTTPCallbackSender)(nil)

// DeliverCallback posts the final text, retrying transient failures once.
func (s *HTTPCallbackSender) DeliverCallback(ctx context.Context, reply CallbackReply) error {
	if reply.URL == "" {
		return errors.New("dialogue: callback url required")
	}
	if strings.TrimSpace(reply.Text) == "" {
		return errors.New("dialogue: callback text required")
	}

	ctx, span := callbackTracer.Start(ctx, "dialogue.callback.deliver")
	defer span.End()
	span.SetAttributes(attribute.Int("chatpi.text_len", len(reply.Text)))

	bodyBytes, err := json.Marshal(kakao.TextResponse(reply.Text))
	if err != nil {
		return fmt.Errorf("dialogue: failed to marshal callback body: %w", err)
	}

	var attempt int
	var lastErr error
	for attempt = 1; attempt <= callbackAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reply.URL, bytes.NewReader(bodyBytes))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.logger.Info("callback delivered", "attempt", attempt)
				return nil
			}
			lastErr = fmt.Errorf("callback post failed: status %d", resp.StatusCode)
		}

		if attempt < callbackAttempts {
			time.Sleep(callbackBackoff)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		s.logger.Error("failed to deliver callback", "error", lastErr)
	}
	return lastErr
}
