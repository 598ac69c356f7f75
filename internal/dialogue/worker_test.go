package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

func TestWorkerProcessesCallbackJob(t *testing.T) {
	queue := newScriptedQueue()
	refiner := &recordingRefiner{text: "완성된 맞춤 코스"}
	messenger := &recordingMessenger{}
	worker := NewWorker(refiner, queue, messenger, logging.Default(),
		WithWorkerCount(1), WithReceiveBatchSize(1), WithReceiveWaitSeconds(0),
		WithWorkerMaxBudget(10*time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	payload := queuePayload{
		ID:   "job-1",
		Kind: jobTypeCallback,
		Callback: &CallbackJob{
			UserID:      "user-1",
			Utterance:   "2박 호텔 바다 해산물 커플",
			Draft:       "초안 코스",
			CallbackURL: "https://callback.example/turn",
			Deadline:    time.Now().Add(time.Minute),
		},
	}
	body, _ := json.Marshal(payload)
	queue.enqueue(queueMessage{ID: "msg-1", Body: string(body), ReceiptHandle: "rh-1"})

	waitFor(func() bool {
		return messenger.count() > 0
	}, time.Second, t)

	cancel()
	worker.Wait()

	replies := messenger.replies()
	if len(replies) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(replies))
	}
	if replies[0].URL != "https://callback.example/turn" || replies[0].Text != "완성된 맞춤 코스" {
		t.Fatalf("unexpected reply %#v", replies[0])
	}

	calls := refiner.recorded()
	if len(calls) != 1 {
		t.Fatalf("expected 1 refine call, got %d", len(calls))
	}
	if calls[0].utterance != "2박 호텔 바다 해산물 커플" || calls[0].draft != "초안 코스" {
		t.Fatalf("refine call lost job fields: %#v", calls[0])
	}
	// Plenty of deadline headroom, so the cap decides the budget.
	if calls[0].budget != 10*time.Second {
		t.Fatalf("expected capped budget 10s, got %s", calls[0].budget)
	}

	if queue.deleted != 1 {
		t.Fatalf("expected delete to be invoked once, got %d", queue.deleted)
	}
}

func TestWorkerDeliversDraftWhenDeadlinePassed(t *testing.T) {
	queue := newScriptedQueue()
	refiner := &recordingRefiner{text: "너무 늦은 답"}
	messenger := &recordingMessenger{}
	worker := NewWorker(refiner, queue, messenger, logging.Default(),
		WithWorkerCount(1), WithReceiveBatchSize(1), WithReceiveWaitSeconds(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	payload := queuePayload{
		ID:   "job-2",
		Kind: jobTypeCallback,
		Callback: &CallbackJob{
			UserID:      "user-1",
			Draft:       "초안 코스",
			CallbackURL: "https://callback.example/turn",
			Deadline:    time.Now().Add(-time.Second),
		},
	}
	body, _ := json.Marshal(payload)
	queue.enqueue(queueMessage{ID: "msg-2", Body: string(body), ReceiptHandle: "rh-2"})

	waitFor(func() bool {
		return messenger.count() > 0
	}, time.Second, t)

	cancel()
	worker.Wait()

	calls := refiner.recorded()
	if len(calls) != 1 || calls[0].budget > 0 {
		t.Fatalf("expected exhausted budget, got %#v", calls)
	}
	// The delivery is still attempted with the unrefined draft.
	replies := messenger.replies()
	if len(replies) != 1 || replies[0].Text != "초안 코스" {
		t.Fatalf("expected draft delivery, got %#v", replies)
	}
	if queue.deleted != 1 {
		t.Fatalf("expected delete to be invoked once, got %d", queue.deleted)
	}
}

func TestWorkerDeliveryFailureStillDeletes(t *testing.T) {
	queue := newScriptedQueue()
	refiner := &recordingRefiner{text: "답"}
	messenger := &recordingMessenger{err: errors.New("callback url expired")}
	worker := NewWorker(refiner, queue, messenger, logging.Default(),
		WithWorkerCount(1), WithReceiveBatchSize(1), WithReceiveWaitSeconds(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	payload := queuePayload{
		ID:   "job-3",
		Kind: jobTypeCallback,
		Callback: &CallbackJob{
			Draft:       "초안",
			CallbackURL: "https://callback.example/turn",
			Deadline:    time.Now().Add(time.Minute),
		},
	}
	body, _ := json.Marshal(payload)
	queue.enqueue(queueMessage{ID: "msg-3", Body: string(body), ReceiptHandle: "rh-3"})

	waitFor(func() bool {
		return messenger.count() > 0
	}, time.Second, t)

	cancel()
	worker.Wait()

	if got := messenger.count(); got != 1 {
		t.Fatalf("expected single delivery attempt, got %d", got)
	}
	if queue.deleted != 1 {
		t.Fatalf("failed job must still be deleted, got %d deletes", queue.deleted)
	}
}

func TestWorkerFinishesInFlightJobAfterShutdown(t *testing.T) {
	queue := newScriptedQueue()
	refiner := &blockingRefiner{started: make(chan struct{}), release: make(chan struct{}), text: "늦게 완성된 코스"}
	messenger := &recordingMessenger{}
	worker := NewWorker(refiner, queue, messenger, logging.Default(),
		WithWorkerCount(1), WithReceiveBatchSize(1), WithReceiveWaitSeconds(0))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	payload := queuePayload{
		ID:   "job-6",
		Kind: jobTypeCallback,
		Callback: &CallbackJob{
			UserID:      "user-1",
			Draft:       "초안",
			CallbackURL: "https://callback.example/turn",
			Deadline:    time.Now().Add(time.Minute),
		},
	}
	body, _ := json.Marshal(payload)
	queue.enqueue(queueMessage{ID: "msg-6", Body: string(body), ReceiptHandle: "rh-6"})

	<-refiner.started
	// Shut down while the refinement is in flight, then let it finish.
	cancel()
	close(refiner.release)
	worker.Wait()

	replies := messenger.replies()
	if len(replies) != 1 || replies[0].Text != "늦게 완성된 코스" {
		t.Fatalf("in-flight job must still be delivered, got %#v", replies)
	}
	errs := messenger.contextErrs()
	if len(errs) != 1 || errs[0] != nil {
		t.Fatalf("delivery must not see the shutdown cancellation, got %v", errs)
	}
	if refiner.ctxErr != nil {
		t.Fatalf("refinement must not see the shutdown cancellation, got %v", refiner.ctxErr)
	}
	if queue.deleted != 1 {
		t.Fatalf("finished job must be deleted, got %d deletes", queue.deleted)
	}
}

func TestWorkerDiscardsMalformedJob(t *testing.T) {
	queue := newScriptedQueue()
	refiner := &recordingRefiner{}
	messenger := &recordingMessenger{}
	worker := NewWorker(refiner, queue, messenger, logging.Default(),
		WithWorkerCount(1), WithReceiveBatchSize(1), WithReceiveWaitSeconds(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	queue.enqueue(queueMessage{ID: "msg-4", Body: "not json", ReceiptHandle: "rh-4"})

	waitFor(func() bool {
		queue.delMutex.Lock()
		defer queue.delMutex.Unlock()
		return queue.deleted > 0
	}, time.Second, t)

	cancel()
	worker.Wait()

	if len(refiner.recorded()) != 0 {
		t.Fatal("refiner must not run for malformed jobs")
	}
	if messenger.count() != 0 {
		t.Fatal("messenger must not run for malformed jobs")
	}
}

func TestWorkerDiscardsUnknownJobKind(t *testing.T) {
	queue := newScriptedQueue()
	refiner := &recordingRefiner{}
	messenger := &recordingMessenger{}
	worker := NewWorker(refiner, queue, messenger, logging.Default(),
		WithWorkerCount(1), WithReceiveBatchSize(1), WithReceiveWaitSeconds(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	body, _ := json.Marshal(queuePayload{ID: "job-5", Kind: jobType("digest")})
	queue.enqueue(queueMessage{ID: "msg-5", Body: string(body), ReceiptHandle: "rh-5"})

	waitFor(func() bool {
		queue.delMutex.Lock()
		defer queue.delMutex.Unlock()
		return queue.deleted > 0
	}, time.Second, t)

	cancel()
	worker.Wait()

	if len(refiner.recorded()) != 0 || messenger.count() != 0 {
		t.Fatal("unknown job kinds must be dropped without processing")
	}
}

type scriptedQueue struct {
	ch       chan queueMessage
	deleted  int
	delMutex sync.Mutex
}

func newScriptedQueue() *scriptedQueue {
	return &scriptedQueue{
		ch: make(chan queueMessage, 10),
	}
}

func (s *scriptedQueue) enqueue(msg queueMessage) {
	s.ch <- msg
}

func (s *scriptedQueue) Send(ctx context.Context, body string) error {
	return nil
}

func (s *scriptedQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-s.ch:
		return []queueMessage{msg}, nil
	case <-time.After(50 * time.Millisecond):
		return nil, nil
	}
}

func (s *scriptedQueue) Delete(ctx context.Context, receiptHandle string) error {
	s.delMutex.Lock()
	s.deleted++
	s.delMutex.Unlock()
	return nil
}

func waitFor(cond func() bool, timeout time.Duration, t *testing.T) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

type refineCall struct {
	utterance string
	draft     string
	budget    time.Duration
}

type recordingRefiner struct {
	text  string
	calls []refineCall
	mu    sync.Mutex
}

func (r *recordingRefiner) RefineDraft(ctx context.Context, utterance, draft string, budget time.Duration) string {
	r.mu.Lock()
	r.calls = append(r.calls, refineCall{utterance: utterance, draft: draft, budget: budget})
	r.mu.Unlock()
	if budget <= 0 || r.text == "" {
		return draft
	}
	return r.text
}

func (r *recordingRefiner) recorded() []refineCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]refineCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// blockingRefiner parks inside RefineDraft until released, so tests can
// cancel the worker while a job is mid-refinement.
type blockingRefiner struct {
	started chan struct{}
	release chan struct{}
	text    string
	ctxErr  error
}

func (b *blockingRefiner) RefineDraft(ctx context.Context, utterance, draft string, budget time.Duration) string {
	close(b.started)
	<-b.release
	b.ctxErr = ctx.Err()
	if b.ctxErr != nil {
		return draft
	}
	return b.text
}

type recordingMessenger struct {
	sent    []CallbackReply
	ctxErrs []error
	err     error
	mu      sync.Mutex
}

func (m *recordingMessenger) DeliverCallback(ctx context.Context, reply CallbackReply) error {
	m.mu.Lock()
	m.sent = append(m.sent, reply)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()
	return m.err
}

func (m *recordingMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *recordingMessenger) replies() []CallbackReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CallbackReply, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *recordingMessenger) contextErrs() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]error, len(m.ctxErrs))
	copy(out, m.ctxErrs)
	return out
}
