package mailer

import (
	"context"
	"errors"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Mailgun sends rendered notifications through the Mailgun API.
type Mailgun struct {
	Sender string
	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

// Send delivers one message. html may be empty; tags label the message in
// Mailgun analytics, typically with the template name.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string, tags ...string) error {
	if m == nil || m.client == nil {
		return errors.New("mailgun not configured")
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if len(tags) > 0 {
		if err := msg.AddTag(tags...); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

// Permanent reports whether Mailgun rejected the request outright. Any 4xx
// other than 429 fails the same way on every retry.
func Permanent(err error) bool {
	var ure *mg.UnexpectedResponseError
	if !errors.As(err, &ure) {
		return false
	}
	return ure.Actual >= 400 && ure.Actual < 500 && ure.Actual != http.StatusTooManyRequests
}
