package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"carebook/internal/config"
)

// Message is one outbound email. HTML and Text are both sent so clients
// without HTML rendering still get a readable body.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Service is the transport boundary the channel dispatcher talks to. Failures
// returned here are caught at the channel level and recorded per channel.
type Service interface {
	Send(ctx context.Context, msg Message) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &service{
		client: client,
		config: cfg,
	}
}

func (s *service) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("CareBook <%s>", s.config.FromEmail),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
