package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHub_PublishFansOut(t *testing.T) {
	hub, _ := startHub(t)

	first := NewClient(hub, nil, 1)
	second := NewClient(hub, nil, 2)
	hub.Register <- first
	hub.Register <- second
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Publish(TypeScanCompleted, map[string]int{"user_id": 9})

	for _, c := range []*Client{first, second} {
		select {
		case raw := <-c.send:
			var ev Event
			require.NoError(t, json.Unmarshal(raw, &ev))
			assert.Equal(t, TypeScanCompleted, ev.Type)
			assert.False(t, ev.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub, _ := startHub(t)

	c := NewClient(hub, nil, 1)
	hub.Register <- c
	hub.Unregister <- c

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_FullBufferDropsEvent(t *testing.T) {
	hub, _ := startHub(t)

	c := NewClient(hub, nil, 1)
	hub.Register <- c
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < cap(c.send)+10; i++ {
		hub.Publish(TypeCreditRequestCreated, i)
	}
	assert.Len(t, c.send, cap(c.send))
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, cancel := startHub(t)

	c := NewClient(hub, nil, 1)
	hub.Register <- c
	cancel()

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on stop")
	}
}

func TestHub_AttachAfterStop(t *testing.T) {
	hub, cancel := startHub(t)
	assert.True(t, hub.Attach(NewClient(hub, nil, 1)))

	cancel()
	<-hub.done
	assert.False(t, hub.Attach(NewClient(hub, nil, 2)))
}
