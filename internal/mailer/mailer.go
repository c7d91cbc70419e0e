// Package mailer dispatches commit notification emails over an
// authenticated SMTP relay.
package mailer

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/chapel-lang/github-email-notifications/internal/config"
	"github.com/chapel-lang/github-email-notifications/internal/errors"
	"github.com/chapel-lang/github-email-notifications/internal/logger"
	"github.com/chapel-lang/github-email-notifications/internal/message"
)

// headerApproved is the moderation header some mailing lists require.
const headerApproved = mail.Header("Approved")

// bodyTemplate is the literal notification layout. The indentation is
// part of the format.
const bodyTemplate = `Branch: %s
    Revision: %s
    Author: %s
    Link: %s
    Log Message:

    %s

    Modified Files:
    %s

    Compare: %s
`

// Dispatcher sends one email per notification over a fresh SMTP
// connection. No pooling, no batching, no retries.
type Dispatcher struct {
	cfg      config.MailConfig
	composer *message.Composer
	log      *logger.Logger
}

// New creates a dispatcher.
func New(cfg config.MailConfig, composer *message.Composer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		composer: composer,
		log:      log,
	}
}

// Send builds the notification email and transmits it. It returns a
// configuration error when sender or recipient resolve to empty, and
// a dispatch error when the relay connection, auth or send fails.
func (d *Dispatcher) Send(ctx context.Context, info message.Info) error {
	msg, err := d.buildMessage(info)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(d.cfg.SMTPPort),
		mail.WithTimeout(d.cfg.SMTPTimeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if d.cfg.Login != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(d.cfg.Login),
			mail.WithPassword(d.cfg.Password),
		)
	}

	client, err := mail.NewClient(d.cfg.SMTPHost, opts...)
	if err != nil {
		return errors.DispatchFailed(err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.DispatchFailed(err)
	}

	d.log.Infof("Notification email sent to %s via %s", d.cfg.Recipient, d.cfg.SMTPHost)
	return nil
}

// sender returns the From address: the pusher's formatted address when
// the send-from-author flag is set, the configured sender otherwise.
func (d *Dispatcher) sender(info message.Info) string {
	if d.cfg.SendFromAuthor {
		return info.PusherEmail
	}
	return d.cfg.Sender
}

// buildMessage assembles headers and body. Reply-To and Approved are
// set only when configured; CC addresses join the envelope recipients
// alongside the primary recipient.
func (d *Dispatcher) buildMessage(info message.Info) (*mail.Msg, error) {
	sender := d.sender(info)
	if sender == "" || d.cfg.Recipient == "" {
		return nil, errors.ConfigError("sender and recipient config vars must be set")
	}

	msg := mail.NewMsg()
	if err := msg.From(sender); err != nil {
		return nil, errors.DispatchFailed(fmt.Errorf("invalid sender address %q: %w", sender, err))
	}
	if err := msg.To(d.cfg.Recipient); err != nil {
		return nil, errors.DispatchFailed(fmt.Errorf("invalid recipient address %q: %w", d.cfg.Recipient, err))
	}
	if ccs := d.cfg.CCAddresses(); len(ccs) > 0 {
		if err := msg.Cc(ccs...); err != nil {
			return nil, errors.DispatchFailed(fmt.Errorf("invalid CC address list %q: %w", d.cfg.RecipientCC, err))
		}
	}

	if d.cfg.ReplyTo != "" {
		msg.SetGenHeader(mail.HeaderReplyTo, d.cfg.ReplyTo)
	}
	if d.cfg.Approved != "" {
		msg.SetGenHeader(headerApproved, d.cfg.Approved)
	}

	msg.Subject(d.composer.Subject(info.Message))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(bodyTemplate,
		info.Branch,
		info.Revision,
		info.Pusher,
		info.PullRequestURL,
		info.Message,
		info.ChangedFiles,
		info.CompareURL,
	))

	return msg, nil
}
