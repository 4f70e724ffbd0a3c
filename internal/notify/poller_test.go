package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vpms/pkg/client"
	"github.com/oksasatya/vpms/pkg/helpers"
)

// script returns the queued results in order, then repeats the last one.
type script struct {
	mu      sync.Mutex
	results []result
	calls   int
}

type result struct {
	n   int
	err error
}

func (s *script) next(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i].n, s.results[i].err
}

func (s *script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestTickAlertsOnlyOnIncrease(t *testing.T) {
	src := &script{results: []result{{n: 2}, {n: 2}, {n: 3}, {err: errors.New("timeout")}, {n: 1}, {n: 4}}}
	var alerts []Alert
	p := &Poller{Name: "parcels", Count: src.next, OnIncrease: func(a Alert) { alerts = append(alerts, a) }, Logger: helpers.NopLogger()}

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		p.Tick(ctx)
	}

	require.Len(t, alerts, 2)
	assert.Equal(t, Alert{Name: "parcels", Previous: 2, Current: 3, Added: 1, Message: "parcels: pending count increased"}, alerts[0])
	assert.Equal(t, 1, alerts[1].Previous)
	assert.Equal(t, 4, alerts[1].Current)
	assert.Equal(t, 3, alerts[1].Added)
}

func TestFirstObservationNeverAlerts(t *testing.T) {
	src := &script{results: []result{{n: 5}}}
	called := false
	p := &Poller{Name: "visitors", Count: src.next, OnIncrease: func(Alert) { called = true }}

	p.Tick(context.Background())
	assert.False(t, called)
	last, seen := p.Last()
	assert.True(t, seen)
	assert.Equal(t, 5, last)
}

func TestErrorKeepsPreviousCount(t *testing.T) {
	src := &script{results: []result{{n: 1}, {err: errors.New("down")}, {n: 2}}}
	var alerts []Alert
	p := &Poller{Name: "visitors", Count: src.next, OnIncrease: func(a Alert) { alerts = append(alerts, a) }}

	ctx := context.Background()
	p.Tick(ctx)
	p.Tick(ctx)
	last, _ := p.Last()
	assert.Equal(t, 1, last)
	p.Tick(ctx)
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].Previous)
}

func TestStartFetchesImmediatelyAndStops(t *testing.T) {
	src := &script{results: []result{{n: 0}, {n: 1}}}
	alerted := make(chan Alert, 4)
	p := &Poller{Name: "visitors", Interval: 10 * time.Millisecond, Count: src.next, OnIncrease: func(a Alert) { alerted <- a }}

	require.NoError(t, p.Start(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background()), ErrAlreadyStarted)

	select {
	case a := <-alerted:
		assert.Equal(t, 1, a.Current)
	case <-time.After(2 * time.Second):
		t.Fatal("no alert")
	}

	p.Stop()
	p.Stop()
	calls := src.Calls()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, src.Calls(), "no ticks after Stop")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	src := &script{results: []result{{n: 0}}}
	p := &Poller{Name: "parcels", Interval: time.Hour, Count: src.next}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return src.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestStopBeforeStart(t *testing.T) {
	p := &Poller{Name: "x", Count: func(context.Context) (int, error) { return 0, nil }}
	assert.NotPanics(t, p.Stop)
}

type fakeCounts struct{ visitors, parcels *script }

func (f fakeCounts) PendingVisitorCount(ctx context.Context, _ int64) (int, error) {
	return f.visitors.next(ctx)
}

func (f fakeCounts) PendingParcelCount(ctx context.Context, _ int64) (int, error) {
	return f.parcels.next(ctx)
}

func TestWatcherMessages(t *testing.T) {
	src := fakeCounts{
		visitors: &script{results: []result{{n: 0}, {n: 1}}},
		parcels:  &script{results: []result{{n: 0}, {n: 1}, {n: 3}}},
	}
	var got []string
	collect := func(a Alert) { got = append(got, a.Message) }

	v := NewVisitorPoller(src, 7, 0, collect, nil)
	p := NewParcelPoller(src, 7, 0, collect, nil)
	ctx := context.Background()
	v.Tick(ctx)
	v.Tick(ctx)
	p.Tick(ctx)
	p.Tick(ctx)
	p.Tick(ctx)

	assert.Equal(t, []string{"New visitor awaiting approval", "New parcel pending", "2 new parcels pending"}, got)
}

func TestStartForUserRequiresResident(t *testing.T) {
	src := fakeCounts{visitors: &script{results: []result{{n: 0}}}, parcels: &script{results: []result{{n: 0}}}}

	_, err := StartForUser(context.Background(), src, client.User{ID: 1, Role: "guard"}, time.Hour, nil, nil)
	assert.ErrorIs(t, err, ErrNotResident)

	w, err := StartForUser(context.Background(), src, client.User{ID: 7, Role: "resident"}, time.Hour, nil, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return src.visitors.Calls() == 1 && src.parcels.Calls() == 1
	}, time.Second, 5*time.Millisecond)
	w.Stop()
}

func TestRunForUserUntilCancel(t *testing.T) {
	src := fakeCounts{visitors: &script{results: []result{{n: 0}}}, parcels: &script{results: []result{{n: 0}}}}

	err := RunForUser(context.Background(), src, client.User{ID: 1, Role: "admin"}, time.Hour, nil, nil)
	assert.ErrorIs(t, err, ErrNotResident)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- RunForUser(ctx, src, client.User{ID: 7, Role: "resident"}, time.Hour, nil, nil) }()

	require.Eventually(t, func() bool {
		return src.visitors.Calls() == 1 && src.parcels.Calls() == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunForUser did not return")
	}
}
