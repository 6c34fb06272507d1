package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	netmail "net/mail"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/astroservice/internal/config"
	"github.com/xavierca1/astroservice/internal/entity"
	"github.com/xavierca1/astroservice/internal/logger"
)

const ChannelName = "smtp"

//go:embed templates/preview.html
var templatesFS embed.FS

var previewTemplate = template.Must(template.ParseFS(templatesFS, "templates/preview.html"))

type EmailSender struct {
	cfg       config.SMTPConfig
	mandatory bool
	dialer    Dialer
	timeout   time.Duration
	log       zerolog.Logger
}

func NewEmailSender(cfg config.SMTPConfig, mandatory bool, log zerolog.Logger) *EmailSender {
	// SSL implícito (465) ou STARTTLS quando o servidor oferece (587).
	d := &SMTPDialer{
		Host:      cfg.Host,
		Port:      cfg.Port,
		Username:  cfg.User,
		Password:  cfg.Pass,
		SSL:       cfg.TLSMode == config.TLSModeSSL,
		LocalName: "localhost",
		TLSConfig: &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		},
	}
	return NewEmailSenderWithDialer(cfg, mandatory, d, log)
}

func NewEmailSenderWithDialer(cfg config.SMTPConfig, mandatory bool, d Dialer, log zerolog.Logger) *EmailSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &EmailSender{
		cfg:       cfg,
		mandatory: mandatory,
		dialer:    d,
		timeout:   timeout,
		log:       logger.OrNop(log).With().Str("channel", ChannelName).Logger(),
	}
}

func (s *EmailSender) Name() string             { return ChannelName }
func (s *EmailSender) DestinationField() string { return "email" }
func (s *EmailSender) Mandatory() bool          { return s.mandatory }

func (s *EmailSender) Destination(lead entity.Lead) string {
	return lead.Email
}

// Send mails the preview as text/plain with an HTML alternative to the lead
// and the Bcc list. The whole session is bounded by SMTP_TIMEOUT; when it
// expires the connection is closed before Send returns.
func (s *EmailSender) Send(ctx context.Context, to, text string) entity.DeliveryOutcome {
	if missing := s.missingConfig(); len(missing) > 0 {
		err := fmt.Errorf("%s not set", strings.Join(missing, ", "))
		s.log.Error().Err(err).Msg("❌ SMTP: configuração incompleta")
		return entity.Failed(ChannelName, entity.FailureConfiguration, err, nil)
	}

	envelopeFrom, err := netmail.ParseAddress(s.cfg.From)
	if err != nil {
		return entity.Failed(ChannelName, entity.FailureConfiguration, fmt.Errorf("SMTP_FROM is invalid: %w", err), nil)
	}

	m, err := s.buildMessage(to, text)
	if err != nil {
		return entity.Failed(ChannelName, entity.FailureUnexpected, err, nil)
	}
	recipients := s.recipients(to)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sendErr := s.deliver(ctx, envelopeFrom.Address, recipients, m)
	if sendErr != nil && ctx.Err() != nil {
		sendErr = fmt.Errorf("smtp session: %w (%v)", ctx.Err(), sendErr)
	}

	diag := map[string]any{
		"host":       s.cfg.Host,
		"port":       s.cfg.Port,
		"tls":        s.cfg.TLSMode,
		"recipients": len(recipients),
	}
	if sendErr != nil {
		kind := classifySMTPError(sendErr)
		if code, msg := smtpReply(sendErr); code != 0 {
			diag["smtp_code"] = code
			diag["smtp_message"] = msg
		}
		s.log.Error().Err(sendErr).Str("failure", string(kind)).Msg("❌ SMTP: falha no envio")
		return entity.Failed(ChannelName, kind, sendErr, diag)
	}

	s.log.Info().Int("recipients", len(recipients)).Msg("✅ SMTP: email enviado")
	return entity.Delivered(ChannelName, diag)
}

// Probe only checks TCP reachability of the server; it never authenticates.
func (s *EmailSender) Probe(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.Host) == "" {
		return errors.New("SMTP_HOST not set")
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return err
	}
	return conn.Close()
}

func (s *EmailSender) deliver(ctx context.Context, from string, recipients []string, m *gomail.Message) error {
	sc, err := s.dialer.DialContext(ctx)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer sc.Close()

	if err := sc.Send(from, recipients, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *EmailSender) buildMessage(to, text string) (*gomail.Message, error) {
	data := PreviewEmailData{
		Subject: s.cfg.Subject,
		Lines:   strings.Split(text, "\n"),
	}
	var body bytes.Buffer
	if err := previewTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	if len(s.cfg.Bcc) > 0 {
		m.SetHeader("Bcc", s.cfg.Bcc...)
	}
	m.SetHeader("Subject", s.cfg.Subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", body.String())
	return m, nil
}

func (s *EmailSender) recipients(to string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, 1+len(s.cfg.Bcc))
	for _, addr := range append([]string{to}, s.cfg.Bcc...) {
		key := strings.ToLower(strings.TrimSpace(addr))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(addr))
	}
	return out
}

func (s *EmailSender) missingConfig() []string {
	var missing []string
	if strings.TrimSpace(s.cfg.Host) == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if strings.TrimSpace(s.cfg.User) == "" {
		missing = append(missing, "SMTP_USER")
	}
	if s.cfg.Pass == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if strings.TrimSpace(s.cfg.From) == "" {
		missing = append(missing, "SMTP_FROM")
	}
	return missing
}

func classifySMTPError(err error) entity.FailureKind {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case 530, 534, 535, 538:
			return entity.FailureAuth
		}
		return entity.FailureProtocol
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return entity.FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entity.FailureTimeout
	}

	var (
		opErr     *net.OpError
		dnsErr    *net.DNSError
		recordErr tls.RecordHeaderError
		verifyErr *tls.CertificateVerificationError
		unknownCA x509.UnknownAuthorityError
		hostErr   x509.HostnameError
	)
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr), errors.As(err, &recordErr),
		errors.As(err, &verifyErr), errors.As(err, &unknownCA), errors.As(err, &hostErr):
		return entity.FailureConnect
	}

	// net/smtp recusa PLAIN sem TLS com um erro sem tipo.
	if strings.Contains(err.Error(), "unencrypted connection") {
		return entity.FailureAuth
	}
	return entity.FailureUnexpected
}

func smtpReply(err error) (int, string) {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code, strings.TrimSpace(tpErr.Msg)
	}
	return 0, ""
}
