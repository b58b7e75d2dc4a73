package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
)

var (
	// ErrSMTPHostPortRequired is returned when Host or Port is missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrSMTPNoRecipients is returned when To, Cc and Bcc are all empty.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
	// ErrSMTPNoSender is returned when neither the message nor the config
	// names a sender.
	ErrSMTPNoSender = errors.New("no sender provided")
)

// TLS modes for SMTPConfig.TLS.
const (
	TLSNone     = "none"
	TLSStartTLS = "starttls"
	TLSImplicit = "tls"
)

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is used when Message.From is empty, e.g. "XcelTrack <noreply@xceltrack.com>".
	From string
	// TLS is one of TLSNone, TLSStartTLS (default) or TLSImplicit.
	TLS string
}

type sendFunc func(e *email.Email) error

// SMTP sends mail through an SMTP relay.
type SMTP struct {
	defaultFrom string
	send        sendFunc
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	tlsCfg := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	var send sendFunc
	switch cfg.TLS {
	case TLSNone:
		send = func(e *email.Email) error { return e.Send(addr, auth) }
	case TLSImplicit:
		send = func(e *email.Email) error { return e.SendWithTLS(addr, auth, tlsCfg) }
	default:
		send = func(e *email.Email) error { return e.SendWithStartTLS(addr, auth, tlsCfg) }
	}

	return &SMTP{defaultFrom: cfg.From, send: send}, nil
}

// Send builds the MIME message and hands it to the relay. The call blocks
// until the relay accepts or rejects the message.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(msg.To)+len(msg.Cc)+len(msg.Bcc) == 0 {
		return ErrSMTPNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.defaultFrom
	}
	if from == "" {
		return ErrSMTPNoSender
	}

	e := email.NewEmail()
	e.From = from
	e.To = msg.To
	e.Cc = msg.Cc
	e.Bcc = msg.Bcc
	e.Subject = msg.Subject
	if msg.TextBody != "" {
		e.Text = []byte(msg.TextBody)
	}
	if msg.HTMLBody != "" {
		e.HTML = []byte(msg.HTMLBody)
	}

	return s.send(e)
}

func (s *SMTP) Close() error {
	return nil
}
