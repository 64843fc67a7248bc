// Package email sends transactional email through Resend.
//
// Templates are embedded and rendered into both an HTML and a plain-text
// body. Without an API key the client runs in mock mode and only logs what
// it would have sent.
package email

import (
	"context"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/quantumrocket/quantumrocket/internal/config"
)

// sender is the part of the Resend emails service the client needs.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	emails sender
	from   string
	logger *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	c := &Client{
		from:   cfg.Integration.EmailFrom,
		logger: logger,
	}
	if cfg.Integration.ResendAPIKey != "" {
		c.emails = resend.NewClient(cfg.Integration.ResendAPIKey).Emails
	}
	return c
}

// Live reports whether the client actually delivers mail.
func (c *Client) Live() bool {
	return c.emails != nil
}

// SendEmail renders templateName with data and sends it to a single
// recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data map[string]string) error {
	html, text, err := render(templateName, data)
	if err != nil {
		return errors.Wrapf(err, "failed to render email template %s", templateName)
	}

	if !c.Live() {
		c.logger.Debug().
			Str("to", to).
			Str("template", string(templateName)).
			Msg("sent mock email")
		return nil
	}

	resp, err := c.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}

	c.logger.Debug().
		Str("to", to).
		Str("email_id", resp.Id).
		Msg("sent email")
	return nil
}
