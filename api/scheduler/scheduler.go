package scheduler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/remlic/remlic-api/databases"
	"github.com/remlic/remlic-api/licenses"
	"github.com/remlic/remlic-api/models"
	templates "github.com/remlic/remlic-api/templates/html"
)

// reminderDays are the day offsets before expiry on which a reminder email
// goes out. A record expiring in exactly one of these many days is included
// in that day's batch, so each record is reminded about at most once per
// offset.
var reminderDays = []int{30, 14, 7, 1}

// Scheduler runs the daily expiry reminder job across all category
// collections
type Scheduler struct {
	cron        *cron.Cron
	RecordDBs   map[licenses.Category]databases.RecordDatabase
	UDB         databases.UserDatabase
	LockDB      databases.SchedulerLockDatabase
	sendgridKey string
	baseURL     string
	instanceID  string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	recordDBs map[licenses.Category]databases.RecordDatabase,
	uDB databases.UserDatabase,
	lockDB databases.SchedulerLockDatabase,
	sendgridKey string,
	baseURL string,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		RecordDBs:   recordDBs,
		UDB:         uDB,
		LockDB:      lockDB,
		sendgridKey: sendgridKey,
		baseURL:     baseURL,
		instanceID:  instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Send expiry reminders daily at 6 AM UTC
	_, err := s.cron.AddFunc("0 6 * * *", s.sendExpiryReminders)
	if err != nil {
		zap.S().Errorw("failed to register expiry reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("expiry reminder scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("expiry reminder scheduler stopped")
}

// sendExpiryReminders scans every category collection for records whose
// expiry date falls on one of the reminder offsets and emails their owners
func (s *Scheduler) sendExpiryReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (10 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "expiry_reminder_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for expiry reminder job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("expiry reminder job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "expiry_reminder_job", s.instanceID)

	now := time.Now().UTC()
	targets := make([]string, 0, len(reminderDays))
	for _, days := range reminderDays {
		targets = append(targets, now.AddDate(0, 0, days).Format("2006-01-02"))
	}

	zap.S().Infow("running expiry reminder job", "instance", s.instanceID, "targets", targets)

	// Paused records never make it into a batch; expiry dates are stored as
	// plain YYYY-MM-DD strings so an $in on the target dates matches exactly.
	filter := bson.M{
		"record.expiryDate":          bson.M{"$in": targets},
		"record.notificationsPaused": bson.M{"$ne": true},
	}

	itemsByOwner := make(map[string][]templates.ReminderItem)
	for _, category := range licenses.Categories {
		records, err := s.RecordDBs[category].Find(ctx, filter)
		if err != nil {
			zap.S().Errorw("failed to scan category for expiring records",
				"category", category, "error", err)
			continue
		}
		for _, record := range records {
			status := licenses.StatusOf(record.Details.ExpiryDate, now)
			itemsByOwner[record.Details.OwnerID] = append(itemsByOwner[record.Details.OwnerID], templates.ReminderItem{
				Category: category.String(),
				Label:    recordLabel(record),
				Expiry:   record.Details.ExpiryDate,
				DaysLeft: status.DaysLeft,
			})
		}
	}

	sent := 0
	for ownerID, items := range itemsByOwner {
		if s.sendReminderEmail(ctx, ownerID, items) {
			sent++
		}
	}

	zap.S().Infow("expiry reminder job complete",
		"ownersNotified", sent,
		"ownersMatched", len(itemsByOwner),
	)
}

// sendReminderEmail emails one owner their batch of expiring records
func (s *Scheduler) sendReminderEmail(ctx context.Context, ownerID string, items []templates.ReminderItem) bool {
	email, name := s.getOwnerEmail(ctx, ownerID)
	if email == "" {
		zap.S().Warnw("no email for owner, skipping reminder", "ownerID", ownerID)
		return false
	}

	subject := "Licenses Expiring Soon - RemLic"
	htmlContent := templates.RenderExpiryReminderEmail(name, items, s.baseURL+"/dashboard")
	plainText := plainReminderText(items)

	if err := s.sendEmail(email, name, subject, htmlContent, plainText); err != nil {
		zap.S().Errorw("failed to send expiry reminder email", "error", err, "ownerID", ownerID)
		return false
	}
	return true
}

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("RemLic", "no-reply@remlic.co.za")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(s.sendgridKey)
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

func (s *Scheduler) getOwnerEmail(ctx context.Context, ownerID string) (email, name string) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return "", ""
	}
	user, err := s.UDB.FindOne(ctx, bson.M{"_id": oid})
	if err != nil || user.Details.Email == "" {
		return "", ""
	}
	return user.Details.Email, user.Details.Name
}

// recordLabel picks a human identifier for a record from whichever display
// fields its category populated
func recordLabel(record models.Record) string {
	d := record.Details
	switch {
	case d.RegistrationNumber != "":
		return d.RegistrationNumber
	case d.MakeModel != "":
		return d.MakeModel
	case d.LicenseNumber != "":
		return d.LicenseNumber
	case d.PassportNumber != "":
		return d.PassportNumber
	case d.ContractName != "":
		return d.ContractName
	case d.Description != "":
		return d.Description
	case d.FirstName != "" || d.LastName != "":
		return strings.TrimSpace(d.FirstName + " " + d.LastName)
	default:
		return record.ID.Hex()
	}
}

func plainReminderText(items []templates.ReminderItem) string {
	var b strings.Builder
	b.WriteString("The following documents are due for renewal:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s) expires %s, %d days left\n", item.Label, item.Category, item.Expiry, item.DaysLeft)
	}
	return b.String()
}
