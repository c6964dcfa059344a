package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MacMoment/coding/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for message")
	}
	return Message{}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(logger.Nop())
	channel := uuid.New().String()

	clientA := hub.NewClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventGenerationProcessing})
	hub.Broadcast(Message{Channel: channel, Event: EventGenerationCompleted})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != EventGenerationProcessing {
		t.Fatalf("first event: want=%s got=%s", EventGenerationProcessing, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != EventGenerationCompleted {
		t.Fatalf("second event: want=%s got=%s", EventGenerationCompleted, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("clientA outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventGenerationFailed})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != EventGenerationFailed {
		t.Fatalf("reconnect event: want=%s got=%s", EventGenerationFailed, got.Event)
	}
}

func TestHubIgnoresOtherChannels(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient(uuid.New())
	hub.AddChannel(c, "mine")
	hub.Broadcast(Message{Channel: "theirs", Event: EventJobDone})
	hub.Broadcast(Message{Event: EventJobDone})

	select {
	case msg := <-c.Outbound:
		t.Fatalf("unexpected message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServeHTTPWritesEvents(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient(uuid.New())
	hub.AddChannel(c, "u1")
	hub.Broadcast(Message{Channel: "u1", Event: EventJobDone, Data: map[string]any{"job_id": "j1"}})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, c)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: job.done\n") || !strings.Contains(body, `"job_id":"j1"`) {
		t.Fatalf("unexpected stream body: %q", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type: want=text/event-stream got=%s", got)
	}
}
