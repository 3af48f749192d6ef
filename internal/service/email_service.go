package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"alfabeta/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// ErrEmailDisabled is returned when a report is requested without SES configured
var ErrEmailDisabled = errors.New("email service disabled")

// sesClient is the part of the SES API the service uses
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends progress reports via Amazon SES
type EmailService struct {
	client     sesClient
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service; it is disabled when fromEmail is empty
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fromEmail == "" {
		logger.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("Email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return newEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, logger), nil
}

func newEmailServiceWithClient(client sesClient, fromEmail, fromName, appBaseURL string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

var reportHTML = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #8b5cf6; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%; border-collapse: collapse; }
		td, th { padding: 6px; border-bottom: 1px solid #ddd; text-align: left; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>Progresso no AlfaBeta</h1></div>
		<div class="content">
			<p>Pontuação: <strong>{{.Score}}</strong> · Sequência: <strong>{{.Streak}}</strong></p>
			<p>Palavras completadas: {{.CompletedWords}} de {{.TotalWords}} ({{.OverallPercentage}}%)</p>
			<table>
				<tr><th>Nível</th><th>Completadas</th><th>%</th></tr>
				{{range .Levels}}<tr><td>{{.Level.Name}}{{if .IsCurrentLevel}} (atual){{end}}</td><td>{{.Completed}}/{{.Total}}</td><td>{{.Percentage}}%</td></tr>
				{{end}}
			</table>
			{{with .BestSession}}<p>Melhor sessão: {{.Score}} pontos em {{.FormattedTime}}</p>{{end}}
			{{if $.BaseURL}}<p><a href="{{$.BaseURL}}">Abrir o AlfaBeta</a></p>{{end}}
		</div>
		<div class="footer"><p>Este é um e-mail automático do AlfaBeta.</p></div>
	</div>
</body>
</html>
`))

type reportData struct {
	models.Dashboard
	BaseURL string
}

// SendProgressReport e-mails a summary of the dashboard
func (s *EmailService) SendProgressReport(ctx context.Context, toEmail string, d models.Dashboard) error {
	if !s.enabled {
		s.logger.Info("Skipping progress report (service disabled)", zap.String("to", toEmail))
		return ErrEmailDisabled
	}

	var html bytes.Buffer
	if err := reportHTML.Execute(&html, reportData{Dashboard: d, BaseURL: s.appBaseURL}); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	return s.sendEmail(ctx, toEmail, "Relatório de progresso do AlfaBeta", html.String(), reportText(d))
}

func reportText(d models.Dashboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pontuação: %d\nSequência: %d\n", d.Score, d.Streak)
	fmt.Fprintf(&b, "Palavras completadas: %d de %d (%d%%)\n\n", d.CompletedWords, d.TotalWords, d.OverallPercentage)
	for _, l := range d.Levels {
		fmt.Fprintf(&b, "%s: %d/%d (%d%%)\n", l.Level.Name, l.Completed, l.Total, l.Percentage)
	}
	if d.BestSession != nil {
		fmt.Fprintf(&b, "\nMelhor sessão: %d pontos em %s\n", d.BestSession.Score, d.BestSession.FormattedTime)
	}
	b.WriteString("\n---\nEste é um e-mail automático do AlfaBeta.\n")
	return b.String()
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
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

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("Email sent", fields...)
	return nil
}
