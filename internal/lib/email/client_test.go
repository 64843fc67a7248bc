package email

import (
	"context"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumrocket/quantumrocket/internal/config"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "em_123"}, nil
}

func newTestClient(s sender) *Client {
	log := zerolog.Nop()
	return &Client{emails: s, from: "QuantumRocket <hello@example.com>", logger: &log}
}

func TestRender_Welcome(t *testing.T) {
	html, text, err := render(TemplateWelcome, map[string]string{
		"Email":        "a@b.com",
		"Name":         "<Ada>",
		"DashboardURL": "https://example.com/dashboard",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "&lt;Ada&gt;", "html variant escapes data")
	assert.Contains(t, text, "Hi <Ada>,")
	assert.Contains(t, text, "https://example.com/dashboard")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, err := render("nope", nil)
	assert.Error(t, err)
}

func TestSendWelcomeEmail(t *testing.T) {
	fake := &fakeSender{}
	c := newTestClient(fake)

	require.NoError(t, c.SendWelcomeEmail(context.Background(), "a@b.com", "", "https://example.com/dashboard"))

	require.Len(t, fake.sent, 1)
	req := fake.sent[0]
	assert.Equal(t, []string{"a@b.com"}, req.To)
	assert.Equal(t, "QuantumRocket <hello@example.com>", req.From)
	assert.Equal(t, "Welcome to QuantumRocket", req.Subject)
	assert.Contains(t, req.Html, "Hi there,")
	assert.NotEmpty(t, req.Text)
}

func TestSendEmail_ProviderErrorIsWrapped(t *testing.T) {
	c := newTestClient(&fakeSender{err: assert.AnError})

	err := c.SendWelcomeEmail(context.Background(), "a@b.com", "Ada", "")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewClient_MockModeWithoutKey(t *testing.T) {
	log := zerolog.Nop()
	c := NewClient(&config.Config{}, &log)

	assert.False(t, c.Live())
	assert.NoError(t, c.SendWelcomeEmail(context.Background(), "a@b.com", "Ada", ""))
}
