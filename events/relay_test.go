// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-plan/store"
	"github.com/danielhkuo/quickly-plan/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Envelope
	failOn map[string]error
}

func (p *recordingPublisher) Publish(_ context.Context, event Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failOn[event.EventID]; ok {
		return err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventID)
	}
	return out
}

func appendEvent(t *testing.T, st *store.Store, id, eventType string, payload any) {
	t.Helper()
	env, err := NewEnvelope(id, eventType, "poll-1", time.Now(), payload)
	require.NoError(t, err)
	rec, err := env.Record()
	require.NoError(t, err)
	require.NoError(t, st.AppendOutbox(context.Background(), rec))
}

func TestRelayRunOncePublishesInOrder(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	for i := 1; i <= 3; i++ {
		appendEvent(t, st, fmt.Sprintf("evt-%d", i), TypeVoteCast, VoteCast{PollID: "poll-1", UserID: "u", OptionID: "o", Added: true})
	}

	pub := &recordingPublisher{}
	relay := NewRelay(st, pub, time.Second, nil)

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"evt-1", "evt-2", "evt-3"}, pub.ids())

	pending, err := st.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second run has nothing left to deliver
	n, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRelayStopsAtFirstFailure(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	appendEvent(t, st, "evt-1", TypeVoteCast, VoteCast{PollID: "poll-1"})
	appendEvent(t, st, "evt-2", TypeConsensusReached, ConsensusReached{PollID: "poll-1"})
	appendEvent(t, st, "evt-3", TypePlanConfirmed, PlanConfirmed{PollID: "poll-1"})

	pub := &recordingPublisher{failOn: map[string]error{"evt-2": errors.New("broker down")}}
	relay := NewRelay(st, pub, time.Second, nil)

	n, err := relay.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"evt-1"}, pub.ids())

	pending, err := st.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "evt-2", pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
	require.NotNil(t, pending[0].LastError)
	assert.Contains(t, *pending[0].LastError, "broker down")

	// Recovery resumes from the failed row and keeps the order
	pub.failOn = nil
	n, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"evt-1", "evt-2", "evt-3"}, pub.ids())
}

func TestRelayRunDeliversOnNudge(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	pub := &recordingPublisher{}
	relay := NewRelay(st, pub, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	appendEvent(t, st, "evt-1", TypePollExpired, PollExpired{PollID: "poll-1"})
	relay.Nudge()

	assert.Eventually(t, func() bool {
		return len(pub.ids()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestNudgeNeverBlocks(t *testing.T) {
	relay := NewRelay(nil, nil, time.Second, nil)
	for i := 0; i < 10; i++ {
		relay.Nudge()
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	price := 12.5
	title := "Ramen"
	env, err := NewEnvelope("evt-1", TypePlanConfirmed, "poll-1", time.Now(), PlanConfirmed{
		PlanID:          "plan-1",
		PollID:          "poll-1",
		WinningOptionID: "opt-1",
	})
	require.NoError(t, err)
	assert.Equal(t, sourceService, env.SourceService)

	var payload PlanConfirmed
	require.NoError(t, env.Decode(&payload))
	assert.Equal(t, "opt-1", payload.WinningOptionID)
	assert.Nil(t, payload.ConfirmedFields.Price)

	payload.ConfirmedFields.Price = &price
	payload.ConfirmedFields.Title = &title
	env, err = NewEnvelope("evt-2", TypePlanConfirmed, "poll-1", time.Now(), payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan_id":"plan-1","poll_id":"poll-1","winning_option_id":"opt-1","confirmed_fields":{"title":"Ramen","price":12.5}}`, string(env.Payload))
}
