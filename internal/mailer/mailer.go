package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"regexp"

	"gopkg.in/gomail.v2"

	"github.com/vbonduro/fieldtech/internal/config"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=mailer.go -destination=../mocks/mailer.go -package=mocks

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP sends mail through a configured SMTP relay.
type SMTP struct {
	cfg    config.SMTP
	dialer sender
}

func NewSMTP(cfg config.SMTP) *SMTP {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	return &SMTP{cfg: cfg, dialer: dialer}
}

func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(s.message(to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	slog.DebugContext(ctx, "email sent", "to", to, "subject", subject)
	return nil
}

func (s *SMTP) message(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)
	msg.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	if isHTML(body) {
		msg.SetBody("text/html", body)
	} else {
		msg.SetBody("text/plain", body)
	}
	return msg
}

var htmlTag = regexp.MustCompile("<[^>]+>")

func isHTML(message string) bool {
	return htmlTag.MatchString(message)
}

// Nop discards mail when no relay is configured.
type Nop struct{}

func (Nop) Send(ctx context.Context, to, subject, _ string) error {
	slog.DebugContext(ctx, "email delivery disabled, dropping message", "to", to, "subject", subject)
	return nil
}

// New returns an SMTP mailer when cfg names a relay and sender, else Nop.
func New(cfg config.SMTP) Mailer {
	if cfg.Host == "" || cfg.From == "" {
		return Nop{}
	}
	return NewSMTP(cfg)
}
