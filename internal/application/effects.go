package application

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/infrastructure/cache"
	"github.com/oksasatya/vpms/internal/observability"
	"github.com/oksasatya/vpms/pkg/helpers"
	"github.com/oksasatya/vpms/pkg/mailer"
	mailtpl "github.com/oksasatya/vpms/pkg/mailer/templates"
)

// JobPublisher hands notification jobs to the queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// RecordIndexer mirrors records into a search index.
type RecordIndexer interface {
	IndexVisitor(ctx context.Context, v *entity.Visitor) error
	IndexParcel(ctx context.Context, p *entity.Parcel) error
	Search(ctx context.Context, recordType, q string, size int) ([]map[string]any, error)
}

// PendingCache caches pending counts per resident. A miss returns the
// entry's generation; Set with that generation is dropped if Invalidate ran
// in between. A negative generation means the cache could not be read.
type PendingCache interface {
	Get(ctx context.Context, kind string, residentID int64) (n int, gen int64, ok bool)
	Set(ctx context.Context, kind string, residentID int64, n int, gen int64) error
	Invalidate(ctx context.Context, kind string, residentID int64) error
}

// PhotoStore uploads parcel photos and returns their URL.
type PhotoStore interface {
	PutParcelPhoto(ctx context.Context, parcelID int64, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// Effects bundles the best-effort side effects of record mutations.
// Every field is optional; failures are logged and never surface to callers.
type Effects struct {
	Publisher JobPublisher
	Indexer   RecordIndexer
	Cache     PendingCache
	Metrics   *observability.Metrics
	Logger    *logrus.Logger
	AppName   string
}

const sideEffectTimeout = 3 * time.Second

func (e *Effects) log() *logrus.Entry {
	if e == nil {
		return helpers.Component(nil, "effects")
	}
	return helpers.Component(e.Logger, "effects")
}

func (e *Effects) metrics() *observability.Metrics {
	if e == nil {
		return nil
	}
	return e.Metrics
}

func (e *Effects) notify(ctx context.Context, to *entity.User, template string, opts ...mailtpl.Option) {
	if e == nil || e.Publisher == nil || to == nil || to.Email == "" {
		return
	}
	opts = append([]mailtpl.Option{mailtpl.WithAppName(e.AppName)}, opts...)
	job := mailer.NotificationJob{
		To:       to.Email,
		Name:     to.FullName,
		Template: template,
		Data:     mailtpl.NewData(to.FullName, opts...),
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	err := e.Publisher.PublishJSON(c, job)
	e.Metrics.ObservePublish(template, err)
	if err != nil {
		e.log().WithError(err).WithFields(logrus.Fields{"template": template, "to": to.Email}).Warn("publish notification failed")
	}
}

func (e *Effects) indexVisitor(ctx context.Context, v *entity.Visitor) {
	if e == nil || e.Indexer == nil {
		return
	}
	if err := e.Indexer.IndexVisitor(context.WithoutCancel(ctx), v); err != nil {
		e.log().WithError(err).WithField("visitor_id", v.ID).Warn("index visitor failed")
	}
}

func (e *Effects) indexParcel(ctx context.Context, p *entity.Parcel) {
	if e == nil || e.Indexer == nil {
		return
	}
	if err := e.Indexer.IndexParcel(context.WithoutCancel(ctx), p); err != nil {
		e.log().WithError(err).WithField("parcel_id", p.ID).Warn("index parcel failed")
	}
}

func (e *Effects) search(ctx context.Context, recordType, q string, size int) ([]map[string]any, error) {
	if e == nil || e.Indexer == nil {
		return []map[string]any{}, nil
	}
	return e.Indexer.Search(ctx, recordType, q, size)
}

func (e *Effects) cachedCount(ctx context.Context, kind string, residentID int64, load func() (int, error)) (int, error) {
	gen := int64(-1)
	if e != nil && e.Cache != nil {
		n, g, ok := e.Cache.Get(ctx, kind, residentID)
		if ok {
			return n, nil
		}
		gen = g
	}
	n, err := load()
	if err != nil {
		return 0, err
	}
	if e != nil && e.Cache != nil && gen >= 0 {
		if err := e.Cache.Set(ctx, kind, residentID, n, gen); err != nil {
			e.log().WithError(err).WithField("resident_id", residentID).Debug("cache pending count failed")
		}
	}
	return n, nil
}

func (e *Effects) invalidate(ctx context.Context, kind string, residentID int64) {
	if e == nil || e.Cache == nil {
		return
	}
	if err := e.Cache.Invalidate(context.WithoutCancel(ctx), kind, residentID); err != nil {
		e.log().WithError(err).WithField("resident_id", residentID).Warn("invalidate pending count failed")
	}
}

func (e *Effects) transition(entityName, from, to string, declared bool) {
	e.metrics().ObserveTransition(entityName, from, to, declared)
	if !declared && from != to {
		e.log().WithFields(logrus.Fields{"entity": entityName, "from": from, "to": to}).Warn("undeclared status transition accepted")
	}
}

var (
	kindVisitors = cache.KindVisitors
	kindParcels  = cache.KindParcels
)
