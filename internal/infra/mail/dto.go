package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

type PreviewEmailData struct {
	Subject string
	Lines   []string
}

// Dialer opens an authenticated SMTP session that must not outlive ctx.
// *SMTPDialer is the production implementation.
type Dialer interface {
	DialContext(ctx context.Context) (gomail.SendCloser, error)
}
