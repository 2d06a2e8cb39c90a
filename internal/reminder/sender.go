package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

const (
	reminderTitle = "Time for your pushups!"
	reminderBody  = "You've got this! Every pushup counts towards your goal."
)

// Reminder is one delivered daily reminder
type Reminder struct {
	Title string
	Body  string
	Due   time.Time
}

// Daily builds the reminder due at t
func Daily(t time.Time) Reminder {
	return Reminder{Title: reminderTitle, Body: reminderBody, Due: t}
}

// Sender delivers a reminder to the user
type Sender interface {
	Send(ctx context.Context, r Reminder) error
}

// LogSender writes reminders to the structured log
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, r Reminder) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "reminder", "title", r.Title, "body", r.Body, "due", r.Due.Format(time.RFC3339))
	return nil
}

// WriterSender prints reminders as plain lines, for a terminal
type WriterSender struct {
	W io.Writer
}

func (s WriterSender) Send(ctx context.Context, r Reminder) error {
	_, err := fmt.Fprintf(s.W, "%s  %s\n%s\n", r.Due.Format("15:04"), r.Title, r.Body)
	return err
}

// EmailSender mails reminders through Resend
type EmailSender struct {
	client    *resend.Client
	fromEmail string
	toEmail   string
	isDev     bool
	appName   string
}

func NewEmailSender(apiKey, fromEmail, toEmail, appName string, isDev bool) *EmailSender {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailSender{
		client:    client,
		fromEmail: fromEmail,
		toEmail:   toEmail,
		isDev:     isDev,
		appName:   appName,
	}
}

func (s *EmailSender) Send(ctx context.Context, r Reminder) error {
	subject, body := reminderEmailTemplate(r, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "reminder", "to", s.toEmail, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{s.toEmail},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}

	slog.Info("email sent", "type", "reminder", "to", s.toEmail)
	return nil
}

func reminderEmailTemplate(r Reminder, appName string) (string, string) {
	subject := r.Title
	body := fmt.Sprintf(`%s

Your daily reminder for %s.

Best,
The %s Team`, r.Body, r.Due.Format("Monday, 02 January"), appName)

	return subject, body
}
