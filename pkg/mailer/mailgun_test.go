package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/stretchr/testify/assert"
)

func TestPermanent(t *testing.T) {
	reject := &mg.UnexpectedResponseError{Expected: []int{http.StatusOK}, Actual: http.StatusBadRequest}
	assert.True(t, Permanent(reject))
	assert.True(t, Permanent(fmt.Errorf("send: %w", reject)))

	assert.False(t, Permanent(&mg.UnexpectedResponseError{Actual: http.StatusTooManyRequests}))
	assert.False(t, Permanent(&mg.UnexpectedResponseError{Actual: http.StatusBadGateway}))
	assert.False(t, Permanent(context.DeadlineExceeded))
	assert.False(t, Permanent(errors.New("dial tcp: connection refused")))
	assert.False(t, Permanent(nil))
}

func TestUnconfiguredMailgunFails(t *testing.T) {
	var m *Mailgun
	assert.Error(t, m.Send(context.Background(), "a@b.co", "s", "t", ""))
}
