package notify

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"

	applog "budgetbuddy/internal/log"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sender is the part of *mail.Client the mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends alerts through an SMTP relay.
type Mailer struct {
	from   string
	client sender
	logger *applog.Logger
}

var _ Notifier = (*Mailer)(nil)

func NewMailer(cfg SMTPConfig, logger *applog.Logger) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return newMailer(cfg.From, client, logger), nil
}

func newMailer(from string, client sender, logger *applog.Logger) *Mailer {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Mailer{from: from, client: client, logger: logger.WithComponent(applog.ComponentNotify)}
}

func (m *Mailer) SendLowBalanceAlert(ctx context.Context, email string, balance decimal.Decimal) error {
	msg, err := m.buildMessage(email, balance)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send alert to %s: %w", email, err)
	}
	m.logger.InfoContext(ctx, "Low balance alert sent", applog.FieldOwnerEmail, email)
	return nil
}

func (m *Mailer) buildMessage(to string, balance decimal.Decimal) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(alertSubject)
	msg.SetBodyString(mail.TypeTextPlain, AlertBody(balance))
	return msg, nil
}
