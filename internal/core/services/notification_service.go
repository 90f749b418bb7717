package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/core/schedule"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// NotificationService sends report emails through Amazon SES. When no
// sender address is configured the service runs disabled and every
// send becomes a logged no-op, so local setups work without AWS.
type NotificationService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewNotificationService creates a new notification service
func NewNotificationService(ctx context.Context, awsRegion, fromEmail, fromName string) (*NotificationService, error) {
	if fromEmail == "" {
		log.Println("📭 Email notifications disabled: SES_FROM_EMAIL not configured")
		return &NotificationService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("📧 Email notifications enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &NotificationService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the notification service is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// SendReportEmail formats a maraude report and mails it to the recipients
func (s *NotificationService) SendReportEmail(ctx context.Context, report *models.MaraudeReport, action *models.MaraudeAction, recipients []string, subject, message string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): report #%d", report.ID)
		return nil
	}

	if subject == "" {
		subject = fmt.Sprintf("Compte-rendu de maraude — %s — %s", action.Title, report.ReportDate.Format("02/01/2006"))
	}

	htmlBody, textBody := formatReportEmail(report, action, message)
	return s.send(ctx, recipients, subject, htmlBody, textBody)
}

// SendDailyDigest mails the day's planned maraudes to the recipients
func (s *NotificationService) SendDailyDigest(ctx context.Context, actions []*models.MaraudeAction, recipients []string) error {
	if !s.enabled || len(actions) == 0 || len(recipients) == 0 {
		return nil
	}

	var text strings.Builder
	var htmlRows strings.Builder
	for _, a := range actions {
		line := fmt.Sprintf("%s — %s–%s — %s", a.Title, a.StartTime, a.EndTime, a.StartAddress)
		text.WriteString("- " + line + "\n")
		htmlRows.WriteString("<li>" + html.EscapeString(line) + "</li>")
	}

	subject := fmt.Sprintf("Maraudes du jour — %d action(s) planifiée(s)", len(actions))
	htmlBody := fmt.Sprintf(`<html><body>
<h2>Maraudes planifiées aujourd'hui</h2>
<ul>%s</ul>
<p>— Solidarité Maraude</p>
</body></html>`, htmlRows.String())
	textBody := fmt.Sprintf("Maraudes planifiées aujourd'hui :\n\n%s\n— Solidarité Maraude\n", text.String())

	return s.send(ctx, recipients, subject, htmlBody, textBody)
}

func formatReportEmail(report *models.MaraudeReport, action *models.MaraudeAction, message string) (string, string) {
	var text strings.Builder
	var htmlB strings.Builder

	fmt.Fprintf(&text, "Compte-rendu de maraude\n\n")
	fmt.Fprintf(&text, "Action : %s\n", action.Title)
	fmt.Fprintf(&text, "Date : %s (%s)\n", report.ReportDate.Format("02/01/2006"), schedule.DayName(action))
	if report.StartTime != "" || report.EndTime != "" {
		fmt.Fprintf(&text, "Horaires : %s - %s\n", report.StartTime, report.EndTime)
	}
	fmt.Fprintf(&text, "Bénéficiaires : %d\n", report.BeneficiariesCount)
	fmt.Fprintf(&text, "Bénévoles : %d\n", report.VolunteersCount)

	if len(report.Distributions) > 0 {
		text.WriteString("\nDistributions :\n")
		for _, d := range report.Distributions {
			name := fmt.Sprintf("type %d", d.DistributionTypeID)
			if d.DistributionType != nil {
				name = d.DistributionType.Name
			}
			fmt.Fprintf(&text, "- %s : %d\n", name, d.Quantity)
		}
	}

	if report.HasUrgentSituations {
		text.WriteString("\n⚠️ Situations urgentes signalées :\n")
		for _, a := range report.Alerts {
			fmt.Fprintf(&text, "- [%s/%s] %s\n", a.AlertType, a.Severity, a.SituationDescription)
		}
		if report.UrgentSituationsDetails != "" {
			fmt.Fprintf(&text, "%s\n", report.UrgentSituationsDetails)
		}
	}

	if report.GeneralNotes != "" {
		fmt.Fprintf(&text, "\nNotes : %s\n", report.GeneralNotes)
	}
	if message != "" {
		fmt.Fprintf(&text, "\n%s\n", message)
	}

	htmlB.WriteString("<html><body><pre style=\"font-family: Arial, sans-serif; white-space: pre-wrap;\">")
	htmlB.WriteString(html.EscapeString(text.String()))
	htmlB.WriteString("</pre></body></html>")

	return htmlB.String(), text.String()
}

func (s *NotificationService) send(ctx context.Context, recipients []string, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email sent: to=%d recipient(s), subject=%s", len(recipients), subject)
	return nil
}
