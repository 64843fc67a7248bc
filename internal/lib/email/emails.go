package email

import "context"

// SendWelcomeEmail greets a newly registered user.
func (c *Client) SendWelcomeEmail(ctx context.Context, to, name, dashboardURL string) error {
	return c.SendEmail(ctx, to, "Welcome to QuantumRocket", TemplateWelcome, map[string]string{
		"Email":        to,
		"Name":         name,
		"DashboardURL": dashboardURL,
	})
}
