package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"aidigest/app/content"
)

const (
	defaultSMTPHost = "smtp.qq.com"
	defaultSMTPPort = 465
)

// SMTPSender delivers digests over plain SMTP. Port 465 uses implicit
// TLS; any other port goes through STARTTLS.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	renderer *Renderer
}

func NewSMTPSender(host string, port int, user, password string, renderer *Renderer) (*SMTPSender, error) {
	if user == "" || password == "" {
		return nil, errors.New("smtp user and password required")
	}
	if host == "" {
		host = defaultSMTPHost
	}
	if port == 0 {
		port = defaultSMTPPort
	}

	return &SMTPSender{host: host, port: port, user: user, password: password, renderer: renderer}, nil
}

func (s *SMTPSender) SendDigest(ctx context.Context, digest content.Digest, to, from string) error {
	date, err := time.Parse("2006-01-02", digest.Date)
	if err != nil {
		date = time.Now()
	}

	msg := buildMessage(from, to, Subject(date), s.renderer.Render(digest))

	if s.port == 465 {
		err = s.sendImplicitTLS(ctx, from, to, msg)
	} else {
		auth := smtp.PlainAuth("", s.user, s.password, s.host)
		err = smtp.SendMail(s.addr(), auth, from, []string{to}, msg)
	}
	if err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	slog.Info("Digest email sent", "transport", "smtp", "host", s.host, "to", to)
	return nil
}

// sendImplicitTLS handles the SSL-from-the-start handshake that
// smtp.SendMail cannot do (QQ Mail and most Chinese providers only
// accept port 465).
func (s *SMTPSender) sendImplicitTLS(ctx context.Context, from, to string, msg []byte) error {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 30 * time.Second},
		Config:    &tls.Config{ServerName: s.host},
	}

	conn, err := dialer.DialContext(ctx, "tcp", s.addr())
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err = client.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
		return err
	}
	if err = client.Mail(from); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func (s *SMTPSender) addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// buildMessage assembles an RFC 5322 message with a Q-encoded subject
// so the Chinese subject line survives every relay.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	return []byte(b.String())
}
