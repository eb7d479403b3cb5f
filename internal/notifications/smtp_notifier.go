package notifications

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SMTPNotifier sends the verification email over SMTP.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPConfigFromEnv reads the SMTP_* variables.
func SMTPConfigFromEnv() (SMTPConfig, error) {
	cfg := SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}

	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	cfg.Port = port

	if cfg.Host == "" {
		return SMTPConfig{}, fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if cfg.Port == 0 {
		return SMTPConfig{}, fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if cfg.From == "" {
		return SMTPConfig{}, fmt.Errorf("missing SMTP_FROM environment variable")
	}

	return cfg, nil
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	dialer := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &SMTPNotifier{
		dialer: dialer,
		from:   cfg.From,
	}
}

func (n *SMTPNotifier) SendVerificationEmail(ctx context.Context, in SendVerificationEmailInput) error {
	if in.Email == "" {
		return fmt.Errorf("no recipient specified")
	}

	body, err := VerificationEmailBody(in.Name, in.VerifyURL)

	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", in.Email)
	msg.SetHeader("Subject", "Account Verification Email")
	msg.SetBody("text/html", body)

	// gomail has no context support; the dialer's own timeouts apply.
	return n.dialer.DialAndSend(msg)
}
