package email

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/streetcode-platform/server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestValidateEmailAddress(t *testing.T) {
	valid := []string{
		"user@example.com",
		"test.user@example.com",
		"user+tag@example.co.uk",
		"Visitor <visitor@example.com>",
	}
	for _, email := range valid {
		t.Run(email, func(t *testing.T) {
			require.NoError(t, validateEmailAddress(email))
		})
	}

	invalid := []struct {
		email       string
		description string
	}{
		{"", "empty string"},
		{"notanemail", "no @ symbol"},
		{"@example.com", "missing local part"},
		{"user@", "missing domain"},
		{"victim@example.com\r\nBcc: attacker@evil.com", "header injection"},
	}
	for _, tt := range invalid {
		t.Run(tt.description, func(t *testing.T) {
			require.Error(t, validateEmailAddress(tt.email))
		})
	}
}

func TestNewServiceRejectsBadSender(t *testing.T) {
	_, err := NewService(config.EmailConfig{
		ResendAPIKey: "re_test",
		From:         "not-an-address",
		FeedbackTo:   "team@example.com",
	}, zerolog.Nop())
	require.Error(t, err)
}

func TestSendFeedbackDisabledService(t *testing.T) {
	service, err := NewService(config.EmailConfig{}, zerolog.Nop())
	require.NoError(t, err)

	err = service.SendFeedback(context.Background(), Feedback{
		Name:    "Visitor",
		From:    "visitor@example.com",
		Content: "Great project",
	})
	require.NoError(t, err)
}

func TestSendFeedbackRejectsBadReplyAddress(t *testing.T) {
	service, err := NewService(config.EmailConfig{}, zerolog.Nop())
	require.NoError(t, err)

	err = service.SendFeedback(context.Background(), Feedback{
		From:    "visitor@example.com\r\nBcc: attacker@evil.com",
		Content: "hi",
	})
	require.Error(t, err)
}
