package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidgrab/internal/domain"
)

func drain(ch <-chan HubMessage) []HubMessage {
	var out []HubMessage
	for msg := range ch {
		out = append(out, msg)
	}
	return out
}

func TestEventHub_LiveSubscriber(t *testing.T) {
	hub := NewEventHub()
	replay, live, unsubscribe := hub.Subscribe()
	defer unsubscribe()
	assert.Empty(t, replay)

	hub.OnNotice("using standard download mode")
	hub.OnEvent(domain.RunEvent{Seq: 1, Kind: domain.EventLine, Line: "hello"})
	hub.OnOutcome(domain.RunOutcome{Kind: domain.OutcomeSucceeded})

	msgs := drain(live)
	require.Len(t, msgs, 3)
	assert.Equal(t, MessageNotice, msgs[0].Type)
	assert.Equal(t, "hello", msgs[1].Event.Line)
	assert.Equal(t, domain.OutcomeSucceeded, msgs[2].Outcome.Kind)
	assert.True(t, hub.Closed())
}

func TestEventHub_LateSubscriberGetsReplay(t *testing.T) {
	hub := NewEventHub()
	hub.OnEvent(domain.RunEvent{Seq: 1, Kind: domain.EventLine, Line: "a"})
	hub.OnEvent(domain.RunEvent{Seq: 2, Kind: domain.EventLine, Line: "b"})

	replay, live, unsubscribe := hub.Subscribe()
	defer unsubscribe()
	require.Len(t, replay, 2)
	assert.Equal(t, 1, replay[0].Event.Seq)

	hub.OnEvent(domain.RunEvent{Seq: 3, Kind: domain.EventLine, Line: "c"})
	hub.OnOutcome(domain.RunOutcome{Kind: domain.OutcomeCancelled})

	msgs := drain(live)
	require.Len(t, msgs, 2)
	assert.Equal(t, 3, msgs[0].Event.Seq)
}

func TestEventHub_SubscribeAfterClose(t *testing.T) {
	hub := NewEventHub()
	hub.OnOutcome(domain.RunOutcome{Kind: domain.OutcomeFailed})
	// ignored once closed
	hub.OnNotice("late")

	replay, live, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	require.Len(t, replay, 1)
	assert.Equal(t, MessageOutcome, replay[0].Type)
	_, open := <-live
	assert.False(t, open)
	assert.Len(t, hub.History(), 1)
}

func TestEventHub_Unsubscribe(t *testing.T) {
	hub := NewEventHub()
	_, live, unsubscribe := hub.Subscribe()

	unsubscribe()
	unsubscribe()

	_, open := <-live
	assert.False(t, open)
	hub.OnNotice("no panic after unsubscribe")
}

func TestEventHub_SlowSubscriberDropped(t *testing.T) {
	hub := NewEventHub()
	_, live, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	for i := 0; i < defaultSubscriberQueue+10; i++ {
		hub.OnEvent(domain.RunEvent{Seq: i + 1, Kind: domain.EventLine, Line: "x"})
	}

	msgs := drain(live)
	assert.Len(t, msgs, defaultSubscriberQueue)
}

func TestEventHub_HistoryLimit(t *testing.T) {
	hub := NewEventHub()
	hub.historyLimit = 3

	for i := 1; i <= 5; i++ {
		hub.OnEvent(domain.RunEvent{Seq: i, Kind: domain.EventLine})
	}

	history := hub.History()
	require.Len(t, history, 3)
	assert.Equal(t, 3, history[0].Event.Seq)
	assert.Equal(t, 5, history[2].Event.Seq)
}
