package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/pkg/mailer"
	mailtpl "github.com/oksasatya/vpms/pkg/mailer/templates"
)

type sender interface {
	Send(ctx context.Context, to, subject, text, html string, tags ...string) error
}

type publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// maxAttempts bounds sends per job, counting the first one.
const maxAttempts = 5

type outcome int

const (
	ack outcome = iota
	retry
	drop
)

func (o outcome) String() string {
	switch o {
	case ack:
		return "ack"
	case retry:
		return "retry"
	default:
		return "drop"
	}
}

// result is what to do with a delivery. Next is the job to republish when
// the outcome is retry.
type result struct {
	Outcome outcome
	Next    *mailer.NotificationJob
}

// handle renders and sends one job. Malformed or unrenderable jobs are
// dropped, as are jobs Mailgun rejects outright or that ran out of attempts.
// Any other send failure asks for a retry with the attempt counter bumped.
func handle(ctx context.Context, body []byte, s sender, logger *logrus.Entry) result {
	var job mailer.NotificationJob
	if err := json.Unmarshal(body, &job); err != nil {
		logger.WithError(err).Warn("bad message")
		return result{Outcome: drop}
	}
	if !job.Valid() {
		logger.WithField("template", job.Template).Warn("job without recipient or template")
		return result{Outcome: drop}
	}
	if job.Data == nil {
		job.Data = mailtpl.NewData(job.Name)
	}

	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		logger.WithError(err).WithField("template", job.Template).Warn("render failed")
		return result{Outcome: drop}
	}

	fields := logrus.Fields{"template": job.Template, "to": job.To, "attempt": job.Attempt + 1}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.Send(c, job.To, subject, text, html, job.Template); err != nil {
		switch {
		case mailer.Permanent(err):
			logger.WithError(err).WithFields(fields).Error("send rejected; dropping")
			return result{Outcome: drop}
		case job.Attempt+1 >= maxAttempts:
			logger.WithError(err).WithFields(fields).Error("send failed; attempts exhausted")
			return result{Outcome: drop}
		}
		logger.WithError(err).WithFields(fields).Warn("send failed")
		job.Attempt++
		return result{Outcome: retry, Next: &job}
	}
	logger.WithFields(fields).Info("notification sent")
	return result{Outcome: ack}
}

// backoff grows linearly with the attempt number, capped at 30s.
func backoff(attempt int) time.Duration {
	d := time.Duration(attempt) * 2 * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

// republish puts job back on the queue after waiting out its backoff.
// A cancelled ctx aborts the wait and returns ctx.Err().
func republish(ctx context.Context, pub publisher, job mailer.NotificationJob, wait time.Duration) error {
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return pub.PublishJSON(ctx, job)
}
