package service

import (
	"errors"
	"fmt"
	"html"

	"baluarte/config"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled SMTP is not configured
var ErrEmailDisabled = errors.New("servicio de email deshabilitado, configurá email.enabled=true")

// EmailService SMTP notifications
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates the email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled reports whether SMTP is configured
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendProUpgradeEmail confirms the PRO plan activation
func (s *EmailService) SendProUpgradeEmail(toEmail, username string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	subject := "[Baluarte] Tu Plan PRO está activo"
	body := s.generateUpgradeEmailBody(username)

	return s.sendEmail(toEmail, subject, body)
}

func (s *EmailService) generateUpgradeEmailBody(username string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #0f766e, #115e59); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .content li { color: #333; line-height: 1.8; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Baluarte</h1>
        </div>
        <div class="content">
            <p>Hola <strong>%s</strong>,</p>
            <p>Recibimos tu pago y tu cuenta ya tiene el <strong>Plan PRO</strong>. Desde ahora tenés:</p>
            <ul>
                <li>Transacciones ilimitadas</li>
                <li>Moneda principal en USD</li>
                <li>Hasta 5 usuarios</li>
                <li>Reportes avanzados (exportación a Excel)</li>
                <li>Soporte prioritario</li>
            </ul>
            <p>Gracias por confiar en Baluarte.</p>
        </div>
        <div class="footer">
            <p>Este email se envió automáticamente, no lo respondas.</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(username))
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar email: %w", err)
	}

	return nil
}

// SendTestEmail checks the SMTP configuration
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	subject := "[Baluarte] Prueba de configuración de email"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>Email configurado correctamente</h2>
    <p>Si recibiste este mensaje, el servicio de email funciona.</p>
    <p style="color: #666;">Baluarte</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
