package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// NotificationKind identifies the template a notification was rendered from.
type NotificationKind string

const (
	NotificationInterviewScheduled NotificationKind = "interview.scheduled"
	NotificationInterviewResult    NotificationKind = "interview.result"
	NotificationApplicationStatus  NotificationKind = "application.status"
)

// Notification is a rendered plain-text email.
type Notification struct {
	ID        string
	Kind      NotificationKind
	To        string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// Notifier delivers notifications. Implementations may queue or send inline.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

const defaultSignOff = "Company Team"

// NotificationComposer renders notification subjects and bodies.
type NotificationComposer struct {
	// BaseURL prefixes the candidate facing join link of online interviews.
	BaseURL string
}

// InterviewScheduled renders the email sent when an interview is created.
func (c NotificationComposer) InterviewScheduled(to string, interview Interview, jobTitle, companyName string) Notification {
	var b strings.Builder
	b.WriteString("Dear Candidate,\n\n")
	b.WriteString("Your interview has been scheduled as follows:\n\n")
	fmt.Fprintf(&b, "Job: %s\n", jobTitle)
	fmt.Fprintf(&b, "Date: %s\n", interview.InterviewDate.Format("Monday, 02 January 2006"))
	fmt.Fprintf(&b, "Time: %s %s\n", interview.StartTime.Format("15:04"), interview.Timezone)
	fmt.Fprintf(&b, "Duration: %d minutes\n", interview.DurationMinutes)
	fmt.Fprintf(&b, "Round: %s\n", interview.Round)
	fmt.Fprintf(&b, "Type: %s\n", interview.InterviewType)
	if interview.Platform != "" {
		fmt.Fprintf(&b, "Platform: %s\n", interview.Platform)
	}
	if interview.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", interview.Location)
	}
	if interview.InterviewType == InterviewOnline && interview.MeetingID != "" {
		fmt.Fprintf(&b, "Join link: %s/student/%s\n", strings.TrimRight(c.BaseURL, "/"), interview.MeetingID)
	}
	if len(interview.Attachments) > 0 {
		b.WriteString("\nAttachments:\n")
		for _, attachment := range interview.Attachments {
			name := attachment.Name
			if name == "" {
				name = attachment.URL
			}
			fmt.Fprintf(&b, "- %s: %s\n", name, attachment.URL)
		}
	}
	b.WriteString("\nPlease be prepared accordingly.\n\n")
	writeSignOff(&b, companyName)

	return Notification{
		Kind:    NotificationInterviewScheduled,
		To:      to,
		Subject: "Interview Scheduled for Role: " + jobTitle,
		Body:    b.String(),
	}
}

// InterviewResult renders the email sent when an interview result is set.
func (c NotificationComposer) InterviewResult(to string, interview Interview, jobTitle, companyName string) Notification {
	var subject, opening string
	switch strings.ToLower(interview.Result) {
	case strings.ToLower(ResultShortlisted):
		subject = "Congratulations! You have been shortlisted for " + jobTitle
		opening = fmt.Sprintf("We are pleased to inform you that you have been shortlisted for the position of %s.", jobTitle)
	case strings.ToLower(ResultRejected):
		subject = "Interview Result for " + jobTitle
		opening = fmt.Sprintf("Thank you for your time. Unfortunately, we will not be moving forward with your application for the position of %s.", jobTitle)
	case strings.ToLower(ResultSelected):
		subject = "Congratulations! You have been selected for " + jobTitle
		opening = fmt.Sprintf("We are excited to let you know that you have been selected for the position of %s.", jobTitle)
	default:
		subject = "Your Interview Result for " + jobTitle
		opening = fmt.Sprintf("Your interview result for the position of %s is: %s", jobTitle, interview.Result)
	}

	score := "N/A"
	if interview.Score != nil {
		score = fmt.Sprintf("%d", *interview.Score)
	}
	feedback := strings.TrimSpace(interview.Feedback)
	if feedback == "" {
		feedback = "No feedback provided"
	}

	var b strings.Builder
	b.WriteString("Dear Candidate,\n\n")
	b.WriteString(opening)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Score: %s\n", score)
	fmt.Fprintf(&b, "Feedback: %s\n\n", feedback)
	writeSignOff(&b, companyName)

	return Notification{
		Kind:    NotificationInterviewResult,
		To:      to,
		Subject: subject,
		Body:    b.String(),
	}
}

// ApplicationStatus renders the email sent after every application review.
func (c NotificationComposer) ApplicationStatus(to, candidateName, jobTitle, status string) Notification {
	name := strings.TrimSpace(candidateName)
	if name == "" {
		name = "Candidate"
	}
	body := fmt.Sprintf("Hello %s,\n\nYour application status for %s has been updated to: %s.\n\nThank you for your interest.\n\n", name, jobTitle, status)
	var b strings.Builder
	b.WriteString(body)
	writeSignOff(&b, "")

	return Notification{
		Kind:    NotificationApplicationStatus,
		To:      to,
		Subject: "Update on your application for " + jobTitle,
		Body:    b.String(),
	}
}

func writeSignOff(b *strings.Builder, companyName string) {
	name := strings.TrimSpace(companyName)
	if name == "" {
		name = defaultSignOff
	}
	b.WriteString("Best regards,\n")
	b.WriteString(name)
	b.WriteString("\n")
}

// deliver hands n to notifier after the triggering write has committed.
// Failures are logged and never returned to the caller.
func deliver(ctx context.Context, logger *slog.Logger, notifier Notifier, n Notification) {
	if notifier == nil || strings.TrimSpace(n.To) == "" {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		logger.WarnContext(ctx, "notification delivery failed",
			"notification_kind", string(n.Kind),
			"notification_id", n.ID,
			"error", err,
		)
		return
	}
	logger.InfoContext(ctx, "notification dispatched",
		"notification_kind", string(n.Kind),
		"notification_id", n.ID,
	)
}
