package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEmailServiceReadsSMTPEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USERNAME", "mailer@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	e := NewEmailService().(*emailService)

	assert.Equal(t, "mail.example.com", e.host)
	assert.Equal(t, 2525, e.port)
	assert.Equal(t, "mailer@example.com", e.username)
	assert.Equal(t, "noreply@example.com", e.from)
}

func TestNewEmailServiceDefaults(t *testing.T) {
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_USERNAME", "mailer@example.com")
	t.Setenv("SMTP_FROM", "")

	e := NewEmailService().(*emailService)

	assert.Equal(t, 587, e.port)
	assert.Equal(t, "mailer@example.com", e.from)
}
