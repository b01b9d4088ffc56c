package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/config"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"go.uber.org/zap"
)

// SMTPMailer sends password reset mail over plain SMTP auth.
type SMTPMailer struct {
	cfg config.MailerConfig
}

func NewSMTP(cfg config.MailerConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == "" || cfg.From == "" {
		return nil, errors.New("mailer requires host, port and from address")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: Reset your Productivity Hub password\r\n\r\n"+
			"A password reset was requested for your account.\r\n\r\n"+
			"Open this link within one hour to choose a new password:\r\n%s\r\n\r\n"+
			"If you did not request this, you can ignore this mail.\r\n",
		to, m.cfg.From, resetURL)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		logger.Error("Mailer: sending reset mail", err)
		return fmt.Errorf("sending mail: %w", err)
	}

	logger.Info("Mailer: reset mail sent")
	return nil
}

// LogMailer stands in when SMTP is not configured. It logs the reset
// URL instead of delivering it, which is what local development wants.
type LogMailer struct{}

func NewLog() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	logger.Info("Mailer: reset mail suppressed (mailer disabled)",
		zap.String("to", to),
		zap.String("reset_url", resetURL))
	return nil
}
