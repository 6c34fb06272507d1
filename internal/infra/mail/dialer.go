package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"
)

// SMTPDialer opens a gomail.SendCloser over a connection it owns, so the
// whole session (connect, TLS, greeting, auth, DATA) is bounded by the
// context deadline and torn down when the context ends.
type SMTPDialer struct {
	Host      string
	Port      int
	Username  string
	Password  string
	SSL       bool
	TLSConfig *tls.Config
	LocalName string
}

func (d *SMTPDialer) DialContext(ctx context.Context) (gomail.SendCloser, error) {
	var nd net.Dialer
	raw, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(d.Host, strconv.Itoa(d.Port)))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := raw.SetDeadline(deadline); err != nil {
			raw.Close()
			return nil, err
		}
	}
	stop := context.AfterFunc(ctx, func() { raw.Close() })

	c, err := d.handshake(raw)
	if err != nil {
		stop()
		raw.Close()
		return nil, err
	}
	return &smtpSession{client: c, conn: raw, stop: stop}, nil
}

func (d *SMTPDialer) handshake(raw net.Conn) (*smtp.Client, error) {
	conn := raw
	if d.SSL {
		conn = tls.Client(raw, d.tlsConfig())
	}

	c, err := smtp.NewClient(conn, d.Host)
	if err != nil {
		return nil, err
	}
	if d.LocalName != "" {
		if err := c.Hello(d.LocalName); err != nil {
			return nil, err
		}
	}

	if !d.SSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(d.tlsConfig()); err != nil {
				return nil, err
			}
		}
	}

	if d.Username != "" {
		if ok, mechs := c.Extension("AUTH"); ok {
			if err := c.Auth(d.auth(mechs)); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (d *SMTPDialer) auth(mechs string) smtp.Auth {
	if strings.Contains(mechs, "CRAM-MD5") {
		return smtp.CRAMMD5Auth(d.Username, d.Password)
	}
	// PlainAuth recusa conexão sem TLS fora de localhost.
	return smtp.PlainAuth("", d.Username, d.Password, d.Host)
}

func (d *SMTPDialer) tlsConfig() *tls.Config {
	if d.TLSConfig != nil {
		return d.TLSConfig
	}
	return &tls.Config{ServerName: d.Host, MinVersion: tls.VersionTLS12}
}

type smtpSession struct {
	client *smtp.Client
	conn   net.Conn
	stop   func() bool
}

func (s *smtpSession) Send(from string, to []string, msg io.WriterTo) error {
	if err := s.client.Mail(from); err != nil {
		return err
	}
	for _, addr := range to {
		if err := s.client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt %s: %w", addr, err)
		}
	}

	w, err := s.client.Data()
	if err != nil {
		return err
	}
	if _, err := msg.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Close quits politely and always releases the socket.
func (s *smtpSession) Close() error {
	defer s.stop()
	err := s.client.Quit()
	s.conn.Close()
	return err
}
