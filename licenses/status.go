package licenses

import (
	"math"
	"strings"
	"time"

	"github.com/remlic/remlic-api/models"
)

// ExpiringSoonDays is the notice window for the expiring-soon flag.
const ExpiringSoonDays = 30

// Status describes where a record sits relative to its expiry date.
type Status struct {
	DaysLeft       int
	IsValid        bool
	IsExpiringSoon bool
}

// StatusOf derives the display status for an expiry date. Days left rounds
// up, so a license expiring later today still counts as one day. A malformed
// date reads as expired rather than valid forever.
func StatusOf(expiryDate string, now time.Time) Status {
	expiry, err := time.Parse(dateLayout, expiryDate)
	if err != nil {
		return Status{}
	}
	daysLeft := int(math.Ceil(expiry.Sub(now).Hours() / 24))
	return Status{
		DaysLeft:       daysLeft,
		IsValid:        daysLeft > 0,
		IsExpiringSoon: daysLeft > 0 && daysLeft <= ExpiringSoonDays,
	}
}

// UsageRatio reports how much of a category's quota is used, capped at 1.0.
// Under the unbounded sentinel the ratio is count over max(count,1), which
// keeps the arithmetic defined and reads as "full bar once anything exists".
func UsageRatio(count, limit int) float64 {
	if limit == Unlimited {
		divisor := count
		if divisor < 1 {
			divisor = 1
		}
		return float64(count) / float64(divisor)
	}
	if limit <= 0 {
		return 1
	}
	ratio := float64(count) / float64(limit)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// FilterRecords returns the records whose display fields contain the query,
// case insensitive. The input slice is never mutated; an empty query returns
// it unchanged.
func FilterRecords(records []models.Record, query string) []models.Record {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)

	var matched []models.Record
	for _, record := range records {
		fields := []string{
			record.Details.FirstName,
			record.Details.LastName,
			record.Details.IDNumber,
			record.Details.RegistrationNumber,
			record.Details.PassportNumber,
			record.Details.LicenseNumber,
		}
		for _, field := range fields {
			if field != "" && strings.Contains(strings.ToLower(field), q) {
				matched = append(matched, record)
				break
			}
		}
	}
	if matched == nil {
		matched = []models.Record{}
	}
	return matched
}
