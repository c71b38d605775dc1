package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saniteetti/internal/config"
	"saniteetti/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/gomail.v2"
)

// Sender delivers one prepared message.
type Sender interface {
	Send(m *gomail.Message) error
}

// dialSender opens a fresh SMTP connection per message so concurrent sends
// never share a connection.
type dialSender struct {
	dialer *gomail.Dialer
}

func (s dialSender) Send(m *gomail.Message) error {
	return s.dialer.DialAndSend(m)
}

// Mailer sends order e-mails over SMTP.
type Mailer struct {
	cfg    config.MailConfig
	sender Sender
	logger zerolog.Logger
}

// NewMailer creates a Mailer that dials cfg.Host for every message.
func NewMailer(cfg config.MailConfig, logger zerolog.Logger) *Mailer {
	return NewMailerWithSender(cfg, dialSender{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)}, logger)
}

// NewMailerWithSender creates a Mailer delivering through sender.
func NewMailerWithSender(cfg config.MailConfig, sender Sender, logger zerolog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		sender: sender,
		logger: logger.With().Str("service", "mailer").Logger(),
	}
}

// ErrDeliveryUnknown marks a send abandoned on timeout. The SMTP exchange may
// still complete, so such a mail must not be sent again.
var ErrDeliveryUnknown = errors.New("e-mail delivery outcome unknown")

// OrderPlaced sends the customer confirmation and the merchant notification
// in parallel. Both must succeed.
func (m *Mailer) OrderPlaced(ctx context.Context, order model.Order) error {
	mails, err := m.Compose(EventPlaced, order)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, mail := range mails {
		g.Go(func() error { return m.Deliver(gctx, mail) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.logger.Info().Str("order_id", order.ID).Msg("order e-mails sent")
	return nil
}

// OrderShipped sends the shipped notice to the customer.
func (m *Mailer) OrderShipped(ctx context.Context, order model.Order) error {
	mails, err := m.Compose(EventShipped, order)
	if err != nil {
		return err
	}
	if err := m.Deliver(ctx, mails[0]); err != nil {
		return err
	}

	m.logger.Info().Str("order_id", order.ID).Msg("shipped e-mail sent")
	return nil
}

// Compose renders the mails behind one notification event.
func (m *Mailer) Compose(kind string, order model.Order) ([]Mail, error) {
	if !m.cfg.Configured() {
		return nil, model.ErrMailNotConfigured
	}

	switch kind {
	case EventPlaced:
		customer, err := CustomerConfirmation(order)
		if err != nil {
			return nil, err
		}
		merchant, err := MerchantNotification(order, m.cfg.Recipients)
		if err != nil {
			return nil, err
		}
		return []Mail{customer, merchant}, nil
	case EventShipped:
		notice, err := ShippedNotice(order)
		if err != nil {
			return nil, err
		}
		return []Mail{notice}, nil
	default:
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}
}

// Deliver sends one composed mail.
func (m *Mailer) Deliver(ctx context.Context, mail Mail) error {
	return m.send(ctx, mail)
}

// send delivers mail, giving up after the configured mail timeout.
func (m *Mailer) send(ctx context.Context, mail Mail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", mail.To...)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/html", mail.HTML)

	timeout := m.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.sender.Send(msg) }()

	select {
	case err := <-done:
		if err != nil {
			m.logger.Error().Err(err).Str("subject", mail.Subject).Msg("failed to send e-mail")
			return fmt.Errorf("%w: %v", model.ErrNotificationFailed, err)
		}
		return nil
	case <-ctx.Done():
		m.logger.Error().Err(ctx.Err()).Str("subject", mail.Subject).Dur("timeout", timeout).Msg("e-mail send timed out")
		return fmt.Errorf("%w: %w: %v", model.ErrNotificationFailed, ErrDeliveryUnknown, ctx.Err())
	}
}
