package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/pkg/client"
)

var ErrNotResident = errors.New("pending notifications are only available to residents")

// CountSource is the slice of the API client the watchers need.
type CountSource interface {
	PendingVisitorCount(ctx context.Context, residentID int64) (int, error)
	PendingParcelCount(ctx context.Context, residentID int64) (int, error)
}

var _ CountSource = (*client.Client)(nil)

func NewVisitorPoller(src CountSource, residentID int64, interval time.Duration, onIncrease func(Alert), logger *logrus.Logger) *Poller {
	return &Poller{
		Name:     "visitors",
		Interval: interval,
		Count: func(ctx context.Context) (int, error) {
			return src.PendingVisitorCount(ctx, residentID)
		},
		OnIncrease: onIncrease,
		Describe:   func(int) string { return "New visitor awaiting approval" },
		Logger:     logger,
	}
}

func NewParcelPoller(src CountSource, residentID int64, interval time.Duration, onIncrease func(Alert), logger *logrus.Logger) *Poller {
	return &Poller{
		Name:     "parcels",
		Interval: interval,
		Count: func(ctx context.Context) (int, error) {
			return src.PendingParcelCount(ctx, residentID)
		},
		OnIncrease: onIncrease,
		Describe: func(added int) string {
			if added == 1 {
				return "New parcel pending"
			}
			return fmt.Sprintf("%d new parcels pending", added)
		},
		Logger: logger,
	}
}

// Watchers is the pair of independent pollers for one resident.
type Watchers struct {
	Visitors *Poller
	Parcels  *Poller
}

func newWatchers(src CountSource, user client.User, interval time.Duration, onIncrease func(Alert), logger *logrus.Logger) (*Watchers, error) {
	if user.Role != string(entity.RoleResident) {
		return nil, ErrNotResident
	}
	return &Watchers{
		Visitors: NewVisitorPoller(src, user.ID, interval, onIncrease, logger),
		Parcels:  NewParcelPoller(src, user.ID, interval, onIncrease, logger),
	}, nil
}

// RunForUser polls both counts for a resident until ctx is cancelled.
func RunForUser(ctx context.Context, src CountSource, user client.User, interval time.Duration, onIncrease func(Alert), logger *logrus.Logger) error {
	w, err := newWatchers(src, user, interval, onIncrease, logger)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Visitors.Run(gctx) })
	g.Go(func() error { return w.Parcels.Run(gctx) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// StartForUser starts both pollers for a resident. Other roles get ErrNotResident.
func StartForUser(ctx context.Context, src CountSource, user client.User, interval time.Duration, onIncrease func(Alert), logger *logrus.Logger) (*Watchers, error) {
	w, err := newWatchers(src, user, interval, onIncrease, logger)
	if err != nil {
		return nil, err
	}
	if err := w.Visitors.Start(ctx); err != nil {
		return nil, err
	}
	if err := w.Parcels.Start(ctx); err != nil {
		w.Visitors.Stop()
		return nil, err
	}
	return w, nil
}

func (w *Watchers) Stop() {
	w.Visitors.Stop()
	w.Parcels.Stop()
}
