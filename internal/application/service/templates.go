package service

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names understood by NotificationService
const (
	TemplateReviewRequest        = "review_request"
	TemplateApprovalConfirmation = "approval_confirmation"
)

const layoutHead = `<!DOCTYPE html>
<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background-color: #1E4D8C; color: white; padding: 20px; text-align: center; }
      .content { padding: 20px; background-color: #f9f9f9; }
      .button { display: inline-block; padding: 12px 24px; background-color: #5EA3F2; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
      .footer { text-align: center; padding: 20px; font-size: 12px; color: #666; }
    </style>
  </head>
  <body>
    <div class="container">`

const layoutFoot = `
      <div class="footer"><p>{{.Sender}}</p></div>
    </div>
  </body>
</html>`

var messageTemplates = map[string]*template.Template{
	TemplateReviewRequest: template.Must(template.New(TemplateReviewRequest).Parse(layoutHead + `
      <div class="header"><h1>Event Plan Approval Required</h1></div>
      <div class="content">
        <p>Hello {{.Name}},</p>
        <p>A new event plan requires your approval:</p>
        <h2>{{.Title}}</h2>
        <p>Please review and approve the event plan by clicking the button below:</p>
        <a href="{{.ReviewURL}}" class="button">Review &amp; Approve</a>
      </div>` + layoutFoot)),

	TemplateApprovalConfirmation: template.Must(template.New(TemplateApprovalConfirmation).Parse(layoutHead + `
      <div class="header"><h1>Approval Confirmed</h1></div>
      <div class="content">
        <p>Hello {{.Name}},</p>
        <p>Your approval has been recorded.</p>
        <h2>{{.Title}}</h2>
        <p><strong>Next Steps:</strong></p>
        <p>{{.NextSteps}}</p>
      </div>` + layoutFoot)),
}

// renderTemplate fills a named template with vars
func renderTemplate(name string, vars map[string]string) (string, error) {
	tmpl, ok := messageTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
