package notification

import (
	"fmt"

	"staysync/internal/config"
	"staysync/internal/logger"

	gomail "gopkg.in/gomail.v2"
)

// Notifier delivers a single message to a guest. Implementations are
// best-effort; callers log failures and move on.
type Notifier interface {
	Send(to, subject, body string) error
}

// SMTPNotifier sends guest emails through the configured SMTP relay.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(cfg config.EmailConfig) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.FromAddress,
	}
}

func (n *SMTPNotifier) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

// ConsoleNotifier logs instead of sending. Used in development and as the
// fallback when email is disabled.
type ConsoleNotifier struct {
	Logger *logger.Logger
}

func (n *ConsoleNotifier) Send(to, subject, body string) error {
	n.Logger.Info("NOTIFY", fmt.Sprintf("to=%s subject=%q", to, subject))
	return nil
}
