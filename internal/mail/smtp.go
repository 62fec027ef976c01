package mail

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"

	"marketplace/api/internal/config"
)

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	resetURL string
	send     sendFunc
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.SMTP.Host, strconv.Itoa(cfg.SMTP.Port)),
		auth:     auth,
		from:     cfg.From,
		resetURL: cfg.ResetURL,
		send:     smtp.SendMail,
	}
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	link, err := s.resetLink(msg.Token)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\n", s.from)
	fmt.Fprintf(&body, "To: %s\r\n", msg.Email)
	body.WriteString("Subject: Reset your password\r\n")
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&body, "Hello %s,\r\n\r\n", displayName(msg))
	body.WriteString("We received a request to reset your password. Use the link below to choose a new one:\r\n\r\n")
	fmt.Fprintf(&body, "%s\r\n\r\n", link)
	fmt.Fprintf(&body, "The link expires at %s UTC. If you did not ask for this, you can ignore this email.\r\n",
		msg.ExpiresAt.UTC().Format("2006-01-02 15:04"))

	if err := s.send(s.addr, s.auth, s.from, []string{msg.Email}, body.Bytes()); err != nil {
		return fmt.Errorf("smtp send to %s: %w", s.addr, err)
	}
	return nil
}

func (s *SMTPSender) resetLink(token string) (string, error) {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func displayName(msg PasswordResetMessage) string {
	if name := strings.TrimSpace(msg.Username); name != "" {
		return name
	}
	return msg.Email
}
