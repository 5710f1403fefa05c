package email

import (
	"context"
	"fmt"

	"github.com/deppfellow/storefront-analytics/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Client sends rendered templates through Resend.
type Client struct {
	client *resend.Client
	from   string
	logger *zerolog.Logger
}

func NewClient(cfg *config.IntegrationConfig, logger *zerolog.Logger) *Client {
	return &Client{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   fmt.Sprintf("%s <%s>", "Storefront Analytics", cfg.FromAddress),
		logger: logger,
	}
}

// SendEmail renders templateName with data and sends it to every
// recipient in one message.
func (c *Client) SendEmail(ctx context.Context, to []string, subject string, templateName Template, data any) error {
	html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      to,
		Subject: subject,
		Html:    html,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("email_id", sent.Id).
		Str("template", string(templateName)).
		Int("recipients", len(to)).
		Msg("email sent")

	return nil
}
