package templates

import "time"

// Option mutates notification template data.
type Option func(map[string]any)

func WithAppName(name string) Option { return func(d map[string]any) { d["AppName"] = name } }

func WithTime(t time.Time) Option {
	return func(d map[string]any) { d["Time"] = t.UTC().Format("02 January 2006, 15:04 MST") }
}

func WithField(key string, value any) Option {
	return func(d map[string]any) { d[key] = value }
}

// NewData builds the map carried on a NotificationJob.
func NewData(name string, opts ...Option) map[string]any {
	d := map[string]any{"Name": name}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
