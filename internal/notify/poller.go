// Package notify runs the resident-side pending-count pollers that raise an
// alert when new visitors or parcels show up.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/pkg/helpers"
)

const DefaultInterval = 30 * time.Second

var ErrAlreadyStarted = errors.New("poller already started")

// Alert is raised when the pending count grows between two observations.
type Alert struct {
	Name     string
	Previous int
	Current  int
	Added    int
	Message  string
}

// Poller fetches a count now and then every Interval, from one goroutine.
// The first observation only primes the state and never alerts; a failed
// fetch is logged and keeps the previous count.
type Poller struct {
	Name       string
	Interval   time.Duration
	Count      func(ctx context.Context) (int, error)
	OnIncrease func(Alert)
	// Describe builds the alert message; nil uses a generic one.
	Describe func(added int) string
	Logger   *logrus.Logger

	mu       sync.Mutex
	started  bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	seen     bool
	last     int
}

// Start launches Run in a goroutine. It fails if the poller was started before.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		p.loop(ctx)
	}()
	return nil
}

// Run polls until ctx is cancelled or Stop is called.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-p.done
	return ctx.Err()
}

// Stop ends the loop and waits for it. Safe to call more than once or
// before Start. An in-flight fetch is only cut short by its context.
func (p *Poller) Stop() {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return
	}
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Poller) loop(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	p.Tick(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-t.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs one fetch and compare. Exposed for tests and one-shot use.
func (p *Poller) Tick(ctx context.Context) {
	n, err := p.Count(ctx)
	if err != nil {
		if ctx.Err() == nil {
			helpers.Component(p.Logger, "notify").WithError(err).WithField("poller", p.Name).Warn("fetch pending count failed")
		}
		return
	}

	p.mu.Lock()
	prev, seen := p.last, p.seen
	p.last, p.seen = n, true
	p.mu.Unlock()

	if !seen || n <= prev {
		return
	}
	added := n - prev
	alert := Alert{Name: p.Name, Previous: prev, Current: n, Added: added, Message: p.message(added)}
	helpers.Component(p.Logger, "notify").WithFields(logrus.Fields{"poller": p.Name, "previous": prev, "current": n}).Info(alert.Message)
	if p.OnIncrease != nil {
		p.OnIncrease(alert)
	}
}

// Last returns the last observed count and whether one has been observed.
func (p *Poller) Last() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.seen
}

func (p *Poller) message(added int) string {
	if p.Describe != nil {
		return p.Describe(added)
	}
	return p.Name + ": pending count increased"
}
