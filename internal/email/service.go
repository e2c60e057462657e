package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/streetcode-platform/server/internal/config"
)

// ErrInvalidAddress marks a malformed or unsafe email address.
var ErrInvalidAddress = errors.New("invalid email address")

// Service delivers feedback mail through the Resend API. When no API key is
// configured the service logs and drops messages instead of failing requests.
type Service struct {
	config       config.EmailConfig
	resendClient *resend.Client
	logger       zerolog.Logger
}

// Feedback is a visitor message submitted through the public feedback form.
type Feedback struct {
	Name    string
	From    string
	Content string
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.ResendAPIKey != "" {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		if err := validateEmailAddress(cfg.FeedbackTo); err != nil {
			return nil, fmt.Errorf("invalid feedback recipient in config: %w", err)
		}
	}

	service := &Service{
		config: cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}
	if cfg.ResendAPIKey != "" {
		service.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return service, nil
}

func (s *Service) SendFeedback(ctx context.Context, feedback Feedback) error {
	if err := validateEmailAddress(feedback.From); err != nil {
		return fmt.Errorf("invalid reply address: %w", err)
	}

	if s.resendClient == nil {
		s.logger.Info().
			Str("from", feedback.From).
			Msg("email service disabled, skipping feedback email")
		return nil
	}

	subject := "Streetcode feedback"
	if feedback.Name != "" {
		subject = fmt.Sprintf("Streetcode feedback from %s", feedback.Name)
	}

	body := fmt.Sprintf(
		"<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(feedback.Name),
		html.EscapeString(feedback.From),
		html.EscapeString(feedback.Content),
	)

	if err := s.sendViaResend(ctx, s.config.FeedbackTo, subject, body, feedback.From); err != nil {
		return err
	}

	s.logger.Info().
		Str("from", feedback.From).
		Msg("feedback email sent")
	return nil
}

func (s *Service) sendViaResend(ctx context.Context, to, subject, htmlBody, replyTo string) error {
	params := &resend.SendEmailRequest{
		From:    s.config.From,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		ReplyTo: replyTo,
	}

	sent, err := s.resendClient.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("remaining", rateLimitErr.Remaining).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return fmt.Errorf("email rate limit exceeded (limit: %s, resets in: %s seconds): %w",
				rateLimitErr.Limit, rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	s.logger.Info().
		Str("email_id", sent.Id).
		Str("to", to).
		Msg("email sent via Resend")
	return nil
}

// validateEmailAddress checks format and rejects header injection attempts.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("%w: contains newline characters", ErrInvalidAddress)
	}
	return nil
}
