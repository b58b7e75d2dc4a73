package email

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/xceltrack/xceltrack-api/internal/otp/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultSubject = "Verify Your XcelTrack Account - OTP Code"
	DefaultBrand   = "XcelTrack"
)

//go:embed templates/*
var templates embed.FS

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.ParseFS(templates, "templates/otp.html"))
	textTmpl = template.Must(template.ParseFS(templates, "templates/otp.txt"))
)

type view struct {
	Brand   string
	Name    string
	Code    string
	Minutes int
	Year    int
}

type Config struct {
	Subject string
	Brand   string
}

type Mail struct {
	client  mail.Mail
	ins     instrument.Instrumentation
	clock   clock.Clocker
	subject string
	brand   string
}

func New(client mail.Mail, ins instrument.Instrumentation, clk clock.Clocker, cfg Config) *Mail {
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Brand == "" {
		cfg.Brand = DefaultBrand
	}

	return &Mail{client: client, ins: ins, clock: clk, subject: cfg.Subject, brand: cfg.Brand}
}

// SendOTP renders the verification mail and hands it to the transport.
func (m *Mail) SendOTP(ctx context.Context, d entity.Delivery) error {
	ctx, span := m.ins.Tracer("otp.outbound.email").Start(ctx, "SendOTP")
	defer span.End()

	msg, err := m.render(d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Mail) render(d entity.Delivery) (mail.Message, error) {
	v := view{
		Brand:   m.brand,
		Name:    d.Name,
		Code:    d.Code,
		Minutes: int(d.TTL / time.Minute),
		Year:    m.clock.Now().Year(),
	}

	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, v); err != nil {
		return mail.Message{}, err
	}
	if err := textTmpl.Execute(&text, v); err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		To:       []string{d.To},
		Subject:  m.subject,
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
