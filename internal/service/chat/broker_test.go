package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"campus_chat_server/internal/dto/respond"
)

func decodeFrames(t *testing.T, raw [][]byte) []respond.ChatFrame {
	t.Helper()
	frames := make([]respond.ChatFrame, 0, len(raw))
	for _, b := range raw {
		var f respond.ChatFrame
		if err := json.Unmarshal(b, &f); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		frames = append(frames, f)
	}
	return frames
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func event(conv string, i int) MessageCreatedEvent {
	return MessageCreatedEvent{
		ConversationId: conv,
		Message:        respond.MessageRespond{MessageId: strconv.Itoa(i), ConversationId: conv, Content: "m" + strconv.Itoa(i)},
	}
}

func TestChannelBrokerPreservesOrder(t *testing.T) {
	hub := NewHub()
	sub := newFakeSub("h1", "u1")
	hub.Attach(sub)
	hub.Join("c1", sub)

	b := NewChannelBroker(hub)
	go b.Start(context.Background())

	for i := 0; i < 50; i++ {
		if err := b.Publish(context.Background(), event("c1", i)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	b.Close()

	frames := decodeFrames(t, sub.frames())
	if len(frames) != 50 {
		t.Fatalf("received %d frames, want 50", len(frames))
	}
	for i, f := range frames {
		if f.Event != EventMessageCreated || f.Message.MessageId != strconv.Itoa(i) {
			t.Fatalf("frame %d = %+v, out of order", i, f)
		}
	}

	if err := b.Publish(context.Background(), event("c1", 99)); !errors.Is(err, ErrBrokerClosed) {
		t.Fatalf("Publish after Close = %v, want ErrBrokerClosed", err)
	}
}

func TestChannelBrokerCloseWithoutStart(t *testing.T) {
	b := NewChannelBroker(NewHub())
	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked without Start")
	}
}

// fakeLog 用通道模拟 Kafka 分区
type fakeLog struct {
	mu     sync.Mutex
	keys   []string
	ch     chan []byte
	closed bool
}

func newFakeLog() *fakeLog { return &fakeLog{ch: make(chan []byte, 64)} }

func (l *fakeLog) WriteMessage(_ context.Context, key, value []byte) error {
	l.mu.Lock()
	l.keys = append(l.keys, string(key))
	l.mu.Unlock()
	l.ch <- value
	return nil
}

func (l *fakeLog) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case v := <-l.ch:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *fakeLog) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}

func TestKafkaBrokerDeliversByConversationKey(t *testing.T) {
	hub := NewHub()
	sub := newFakeSub("h1", "u1")
	hub.Attach(sub)
	hub.Join("c1", sub)

	log := newFakeLog()
	b := NewKafkaBroker(hub, log)
	go b.Start(context.Background())

	for i := 0; i < 3; i++ {
		if err := b.Publish(context.Background(), event("c1", i)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	// 不在房间里的会话不会推给 sub
	_ = b.Publish(context.Background(), event("c2", 9))

	waitFor(t, func() bool { return len(sub.frames()) == 3 })
	b.Close()

	for i, f := range decodeFrames(t, sub.frames()) {
		if f.Message.MessageId != strconv.Itoa(i) {
			t.Fatalf("frame %d has id %s", i, f.Message.MessageId)
		}
	}
	if log.keys[0] != "c1" || log.keys[3] != "c2" {
		t.Fatalf("keys = %v, want conversation ids", log.keys)
	}
	if !log.closed {
		t.Fatal("Close should close the event log")
	}
	if err := b.Publish(context.Background(), event("c1", 5)); !errors.Is(err, ErrBrokerClosed) {
		t.Fatalf("Publish after Close = %v, want ErrBrokerClosed", err)
	}
}
