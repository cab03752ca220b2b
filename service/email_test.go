package service

import (
	"testing"

	"baluarte/config"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func TestGenerateUpgradeEmailBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateUpgradeEmailBody("Kiosco <Lola>")
	assert.Contains(t, body, "Kiosco &lt;Lola&gt;")
	assert.NotContains(t, body, "<Lola>")
	assert.Contains(t, body, "Plan PRO")
	assert.Contains(t, body, "Transacciones ilimitadas")
}

func TestEmailService_Disabled(t *testing.T) {
	s := newTestEmailService()
	assert.False(t, s.Enabled())
	assert.ErrorIs(t, s.SendProUpgradeEmail("a@b.com", "a"), ErrEmailDisabled)
	assert.ErrorIs(t, s.SendTestEmail("a@b.com"), ErrEmailDisabled)

	var nilService *EmailService
	assert.False(t, nilService.Enabled())
}

func TestEmailService_Enabled(t *testing.T) {
	s := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 587})
	assert.True(t, s.Enabled())
}
