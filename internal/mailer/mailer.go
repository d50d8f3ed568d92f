// Package mailer delivers one-time codes to users.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/arzan03/CampusPortal/internal/config"
	"github.com/arzan03/CampusPortal/internal/logging"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
	// DemoMode reports that nothing leaves the process.
	DemoMode() bool
}

// New returns an SMTP mailer when credentials are configured and a demo
// mailer otherwise.
func New(cfg config.EmailConfig, log logging.Logger) Mailer {
	if cfg.User == "" || cfg.Pass == "" {
		log.Warn(context.Background(), "email credentials missing, running mailer in demo mode")
		return NewDemoMailer(log)
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth

	send func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(cfg.Host, cfg.Port),
		from: from,
		auth: smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host),
		send: sendMail,
	}
}

func (m *SMTPMailer) DemoMode() bool { return false }

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}

	raw := "From: " + m.from + "\r\n" +
		"To: " + msg.To + "\r\n" +
		"Subject: " + msg.Subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		msg.Body + "\r\n"

	if err := m.send(ctx, m.addr, m.auth, m.from, []string{msg.To}, []byte(raw)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// sendMail is smtp.SendMail bound to ctx: the connection deadline follows the
// context, and cancelling it unblocks any pending read or write.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := converse(conn, addr, a, from, to, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func converse(conn net.Conn, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// DemoMailer logs messages instead of sending them.
type DemoMailer struct {
	log logging.Logger
}

func NewDemoMailer(log logging.Logger) *DemoMailer {
	return &DemoMailer{log: log}
}

func (m *DemoMailer) DemoMode() bool { return true }

func (m *DemoMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info(ctx, "demo mode email", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
