package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/supportkit/case-service/internal/config"
)

// SMTPGateway sends mail through a plain SMTP relay. SMTP offers no
// provider-assigned tracking token, so a uuid is minted at accept time and
// stored as the message id.
type SMTPGateway struct {
	cfg config.EmailConfig
}

// NewSMTPGateway builds the gateway from config.
func NewSMTPGateway(cfg config.EmailConfig) *SMTPGateway {
	return &SMTPGateway{cfg: cfg}
}

// Configured reports whether a host and sender address were provided.
func (g *SMTPGateway) Configured() bool {
	return g.cfg.SMTPHost != "" && g.cfg.SenderAddress != ""
}

// Send delivers the message over SMTP. The connection is bounded by the
// earlier of the ctx deadline and the configured send timeout; a deadline hit
// surfaces as a network error from the underlying conn.
func (g *SMTPGateway) Send(ctx context.Context, msg Message) (Outcome, error) {
	if !g.Configured() {
		return Outcome{}, fmt.Errorf("email gateway not configured")
	}
	if msg.To == "" {
		return Outcome{}, fmt.Errorf("no recipient specified")
	}
	from := msg.From
	if from == "" {
		from = g.cfg.SenderAddress
	}

	deadline := time.Now().Add(g.cfg.SendTimeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	addr := net.JoinHostPort(g.cfg.SMTPHost, strconv.Itoa(g.cfg.SMTPPort))
	conn, err := net.DialTimeout("tcp", addr, time.Until(deadline))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return Outcome{}, fmt.Errorf("failed to set connection deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, g.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return Outcome{}, fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	if g.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName:         g.cfg.SMTPHost,
			InsecureSkipVerify: g.cfg.SkipVerify,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return Outcome{}, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if auth := g.auth(); auth != nil {
		if err := client.Auth(auth); err != nil {
			return Outcome{}, fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return Outcome{}, fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return Outcome{}, fmt.Errorf("failed to set recipient %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	if _, err := w.Write([]byte(buildMIME(from, msg))); err != nil {
		return Outcome{}, fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return Outcome{}, fmt.Errorf("failed to close data transfer: %w", err)
	}

	if err := client.Quit(); err != nil {
		return Outcome{}, fmt.Errorf("failed to quit SMTP session: %w", err)
	}

	return Outcome{MessageID: uuid.NewString()}, nil
}

func (g *SMTPGateway) auth() smtp.Auth {
	if g.cfg.SMTPUser == "" || g.cfg.SMTPPassword == "" {
		return nil
	}
	switch g.cfg.AuthType {
	case "login":
		return &loginAuth{username: g.cfg.SMTPUser, password: g.cfg.SMTPPassword}
	default:
		return smtp.PlainAuth("", g.cfg.SMTPUser, g.cfg.SMTPPassword, g.cfg.SMTPHost)
	}
}

const mimeBoundary = "mime-boundary-case-response"

// buildMIME assembles a multipart/alternative message carrying both the
// plain text fallback and the HTML body.
func buildMIME(from string, msg Message) string {
	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n"+
		"Content-Type: multipart/alternative; boundary=%q\r\n\r\n"+
		"--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n"+
		"--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n"+
		"--%s--\r\n",
		from, to, msg.Subject, mimeBoundary,
		mimeBoundary, msg.TextBody,
		mimeBoundary, msg.HTMLBody,
		mimeBoundary)
}

// loginAuth implements SMTP LOGIN authentication.
type loginAuth struct {
	username, password string
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte{}, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		switch string(fromServer) {
		case "Username:":
			return []byte(a.username), nil
		case "Password:":
			return []byte(a.password), nil
		default:
			return nil, fmt.Errorf("unexpected server challenge: %s", fromServer)
		}
	}
	return nil, nil
}
