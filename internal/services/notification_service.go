// intake-service/internal/services/notification_service.go

package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/poofware/intake-service/internal/branding"
	"github.com/poofware/intake-service/internal/utils"
)

// HTML template for the internal notification email.
const keyStageEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: monospace; line-height: 1.5; }
  .container { border: 1px solid #ccc; padding: 15px; max-width: 600px; }
  h2 { margin-top: 0; }
  ul { list-style: none; padding: 0; }
  li { margin-bottom: 5px; }
  strong { color: #000; }
</style>
</head>
<body>
  <div class="container">
    <h2>API keys verified</h2>
    <ul>
      <li><strong>Company:</strong> %s</li>
      <li><strong>Contact:</strong> %s</li>
      <li><strong>Slack invite email:</strong> %s</li>
      <li><strong>Form token:</strong> %s</li>
      <li><strong>Timestamp (UTC):</strong> %s</li>
    </ul>
  </div>
</body>
</html>`

// KeyStageCompletion describes a form whose API keys both passed.
type KeyStageCompletion struct {
	Token       string
	ContactName string
	CompanyName string
	InviteEmail string
	Company     branding.Company
}

// CompletionNotifier is told when a form clears the key stage.
type CompletionNotifier interface {
	NotifyKeyStageComplete(ctx context.Context, c KeyStageCompletion) error
}

// emailSender is the part of *sendgrid.Client the notifier uses.
type emailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendgridNotifier struct {
	appName   string
	fromEmail string
	client    emailSender
}

// NewSendgridNotifier mails the theme's support address on completion.
func NewSendgridNotifier(appName, apiKey, fromEmail string) CompletionNotifier {
	return &sendgridNotifier{
		appName:   appName,
		fromEmail: fromEmail,
		client:    sendgrid.NewSendClient(apiKey),
	}
}

func (n *sendgridNotifier) NotifyKeyStageComplete(ctx context.Context, c KeyStageCompletion) error {
	if c.Company.SupportEmail == "" {
		return fmt.Errorf("no support email configured for %q", c.Company.Name)
	}

	from := mail.NewEmail(n.appName+" Intake-Bot", n.fromEmail)
	to := mail.NewEmail(c.Company.Name, c.Company.SupportEmail)

	subject := fmt.Sprintf("[Intake][keys verified] %s", c.CompanyName)
	plainTextContent := fmt.Sprintf(
		"API keys verified for %s.\n\nContact: %s\nSlack invite email: %s\nForm token: %s",
		c.CompanyName, c.ContactName, c.InviteEmail, c.Token,
	)
	htmlContent := fmt.Sprintf(
		keyStageEmailHTML,
		html.EscapeString(c.CompanyName),
		html.EscapeString(c.ContactName),
		html.EscapeString(c.InviteEmail),
		html.EscapeString(c.Token),
		time.Now().UTC().Format(time.RFC1123Z),
	)

	msg := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)
	resp, err := n.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send failed: status %d", resp.StatusCode)
	}
	utils.Logger.Debugf("Key stage notification sent to %s", c.Company.SupportEmail)
	return nil
}
