package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/vbonduro/fieldtech/internal/config"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPSend(t *testing.T) {
	fake := &fakeSender{}
	s := NewSMTP(config.SMTP{Host: "smtp.example.com", Port: 587, From: "office@example.com", FromName: "Office"})
	s.dialer = fake

	require.NoError(t, s.Send(context.Background(), "clinic@example.com", "Invoice INV-00001", "<p>Attached</p>"))
	require.Len(t, fake.sent, 1)

	msg := fake.sent[0]
	assert.Equal(t, []string{"clinic@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Invoice INV-00001"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
}

func TestSMTPSendError(t *testing.T) {
	s := NewSMTP(config.SMTP{Host: "smtp.example.com", From: "office@example.com"})
	s.dialer = &fakeSender{err: errors.New("connection refused")}

	err := s.Send(context.Background(), "x@example.com", "s", "plain body")
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewSelectsImplementation(t *testing.T) {
	assert.IsType(t, Nop{}, New(config.SMTP{}))
	assert.IsType(t, &SMTP{}, New(config.SMTP{Host: "h", From: "f@example.com"}))
	assert.NoError(t, Nop{}.Send(context.Background(), "a", "b", "c"))
}
