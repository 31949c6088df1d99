package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	TemplateResetPassword = "reset_password.html"
	TemplateVerifyEmail   = "verify_email.html"
	TemplateOrderUpdate   = "order_update.html"
)

type EmailData struct {
	Name    string
	Message string
	Link    string
	LogoURL string
}

type Message struct {
	To       string
	Subject  string
	Template string
	Data     EmailData
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when SMTP_ADDRESS is set, otherwise one that
// only logs.
func New(cfg config.MailConfig, log *logger.Logger) Mailer {
	if !cfg.Enabled() {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func render(msg Message, logoURL string) ([]byte, error) {
	if msg.Data.LogoURL == "" {
		msg.Data.LogoURL = logoURL
	}
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, msg.Template, msg.Data); err != nil {
		return nil, fmt.Errorf("template execution error: %w", err)
	}
	return body.Bytes(), nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  config.MailConfig
	send sendFunc
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := render(msg, m.cfg.LogoURL)
	if err != nil {
		return err
	}

	raw := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From,
		msg.To,
		msg.Subject,
		body,
	)

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.SMTPHost)
	if err := m.send(m.cfg.SMTPAddress, auth, m.cfg.From, []string{msg.To}, []byte(raw)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer renders the message and writes it to the log instead of sending.
type LogMailer struct {
	log *logger.Logger
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if _, err := render(msg, ""); err != nil {
		return err
	}
	ctx = m.log.WithFields(ctx, map[string]any{
		"to":       msg.To,
		"subject":  msg.Subject,
		"template": msg.Template,
	})
	m.log.Info(ctx, "mail.skipped_no_smtp")
	return nil
}
