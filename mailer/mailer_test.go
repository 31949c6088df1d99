package mailer

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/logger"
)

func TestSMTPMailerRendersTemplateAndHeaders(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte

	m := &SMTPMailer{
		cfg: config.MailConfig{
			SMTPAddress: "smtp.test:587",
			SMTPHost:    "smtp.test",
			From:        "shop@test",
			LogoURL:     "https://cdn.test/logo.png",
		},
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
			return nil
		},
	}

	err := m.Send(context.Background(), Message{
		To:       "ada@test",
		Subject:  "Reset your password",
		Template: TemplateResetPassword,
		Data:     EmailData{Name: "Ada", Link: "https://shop.test/reset?token=abc"},
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:587", gotAddr)
	assert.Equal(t, "shop@test", gotFrom)
	assert.Equal(t, []string{"ada@test"}, gotTo)
	body := string(gotBody)
	assert.True(t, strings.HasPrefix(body, "From: shop@test\r\nTo: ada@test\r\nSubject: Reset your password"))
	assert.Contains(t, body, "Hello Ada")
	assert.Contains(t, body, "https://shop.test/reset?token=abc")
	assert.Contains(t, body, "https://cdn.test/logo.png")
}

func TestSMTPMailerWrapsTransportErrors(t *testing.T) {
	m := &SMTPMailer{
		cfg: config.MailConfig{SMTPAddress: "smtp.test:587"},
		send: func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		},
	}
	err := m.Send(context.Background(), Message{To: "a@test", Template: TemplateVerifyEmail})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}

func TestUnknownTemplateFails(t *testing.T) {
	m := &LogMailer{log: logger.Nop()}
	err := m.Send(context.Background(), Message{To: "a@test", Template: "missing.html"})
	assert.Error(t, err)
}

func TestNewFallsBackToLogMailer(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	m := New(config.MailConfig{}, log)
	_, ok := m.(*LogMailer)
	require.True(t, ok)

	require.NoError(t, m.Send(context.Background(), Message{To: "a@test", Subject: "Hi", Template: TemplateOrderUpdate}))
	assert.Contains(t, buf.String(), "mail.skipped_no_smtp")
	assert.Contains(t, buf.String(), "a@test")
}
