// Package notify sends operator alert emails.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/energee/energee-site/internal/config"
	"github.com/gophish/gomail"
	log "github.com/sirupsen/logrus"
)

// Notifier delivers a short operator alert.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// Dialer sends composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier sends alerts over SMTP.
type MailNotifier struct {
	cfg    config.SMTPConfig
	dialer Dialer
}

// NewMailNotifier builds a notifier from SMTP settings. It returns a
// log-only notifier when SMTP is not configured.
func NewMailNotifier(cfg config.SMTPConfig) Notifier {
	if !cfg.Enabled() {
		return LogNotifier{}
	}
	return &MailNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// NewMailNotifierWithDialer is NewMailNotifier with an injected dialer.
func NewMailNotifierWithDialer(cfg config.SMTPConfig, dialer Dialer) *MailNotifier {
	return &MailNotifier{cfg: cfg, dialer: dialer}
}

// Notify sends one plain-text email to every configured recipient.
func (n *MailNotifier) Notify(ctx context.Context, subject, body string) error {
	if n == nil || n.dialer == nil {
		return nil
	}
	if errCtx := ctx.Err(); errCtx != nil {
		return errCtx
	}
	recipients := splitRecipients(n.cfg.To)
	if len(recipients) == 0 {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.cfg.From)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", "[Energee] "+subject)
	msg.SetBody("text/plain", body)
	if errSend := n.dialer.DialAndSend(msg); errSend != nil {
		return fmt.Errorf("notify: send mail: %w", errSend)
	}
	return nil
}

// LogNotifier writes alerts to the log only.
type LogNotifier struct{}

// Notify logs the alert.
func (LogNotifier) Notify(_ context.Context, subject, body string) error {
	log.WithField("subject", subject).Warn(body)
	return nil
}

func splitRecipients(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
