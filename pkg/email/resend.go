package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Receipt struct {
	Description string
	Amount      string
	Reference   string
	Link        string
}

type EmailService struct {
	client      *resend.Client
	from        string
	fromName    string
	frontendURL string
	logger      *zap.Logger
}

func NewEmailService(apiKey, from, fromName, frontendURL string, logger *zap.Logger) *EmailService {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &EmailService{
		client:      client,
		from:        from,
		fromName:    fromName,
		frontendURL: frontendURL,
		logger:      logger.Named("email"),
	}
}

func (s *EmailService) SendWelcomeEmail(email, name string, bonusCredits int) error {
	return s.send(email, "Welcome to OmniTemplates!", "welcome.html", map[string]interface{}{
		"Name":    name,
		"Credits": bonusCredits,
		"Link":    s.frontendURL + "/templates",
	})
}

func (s *EmailService) SendPasswordResetEmail(email, resetToken string) error {
	return s.send(email, "Reset Your Password - OmniTemplates", "reset-password.html", map[string]interface{}{
		"ResetLink": s.frontendURL + "/reset-password?token=" + resetToken,
	})
}

func (s *EmailService) SendPaymentReceipt(email, name string, receipt Receipt) error {
	return s.send(email, "Your OmniTemplates receipt", "receipt.html", map[string]interface{}{
		"Name":    name,
		"Receipt": receipt,
	})
}

func (s *EmailService) send(to, subject, templateName string, data map[string]interface{}) error {
	if s.client == nil {
		s.logger.Debug("email disabled, skipping", zap.String("to", to), zap.String("template", templateName))
		return nil
	}

	data["Email"] = to
	data["Year"] = time.Now().Year()

	html, err := parseTemplate(templateName, data)
	if err != nil {
		s.logger.Error("failed to render email", zap.String("template", templateName), zap.Error(err))
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Error("failed to send email", zap.String("to", to), zap.String("template", templateName), zap.Error(err))
		return fmt.Errorf("failed to send %s: %w", templateName, err)
	}

	s.logger.Info("email sent", zap.String("to", to), zap.String("template", templateName), zap.String("id", resp.Id))
	return nil
}

func parseTemplate(templateName string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return "", err
	}
	return body.String(), nil
}
