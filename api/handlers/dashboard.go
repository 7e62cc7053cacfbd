package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/remlic/remlic-api/api"
	"github.com/remlic/remlic-api/config"
	"github.com/remlic/remlic-api/licenses"
	"github.com/remlic/remlic-api/models"
)

// Dashboard exported for testing purposes
type Dashboard struct {
	Aggregator *licenses.Aggregator
}

// DashboardHandler returns the aggregated license group for the authenticated
// owner: one section per category in declared order, each record decorated
// with its expiry status. An optional ?q= query filters records by their
// display fields.
func (d Dashboard) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ownerID := api.OwnerFromContext(r.Context())
	query := r.URL.Query().Get("q")

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	group, err := d.Aggregator.Load(ctx, ownerID)
	if err != nil {
		config.ErrorStatus("failed to load dashboard", statusForError(err), w, err)
		return
	}

	limit := licenses.LimitFor(d.Aggregator.Tier(ctx, ownerID))
	now := time.Now()

	failed := make(map[licenses.Category]bool, len(group.Failed))
	for _, category := range group.Failed {
		failed[category] = true
	}

	resp := models.DashboardResponse{Sections: make([]models.DashboardSection, 0, len(licenses.Categories))}
	for _, category := range licenses.Categories {
		records := licenses.FilterRecords(group.Records[category], query)

		decorated := make([]models.DashboardRecord, 0, len(records))
		for _, record := range records {
			status := licenses.StatusOf(record.Details.ExpiryDate, now)
			decorated = append(decorated, models.DashboardRecord{
				Record:         record,
				DaysLeft:       status.DaysLeft,
				IsValid:        status.IsValid,
				IsExpiringSoon: status.IsExpiringSoon,
			})
		}

		// the full (unfiltered) count drives the usage bar
		count := len(group.Records[category])
		sectionLimit := limit
		if sectionLimit == licenses.Unlimited {
			sectionLimit = -1
		}
		resp.Sections = append(resp.Sections, models.DashboardSection{
			Category:   category.String(),
			Records:    decorated,
			Count:      count,
			Limit:      sectionLimit,
			UsageRatio: licenses.UsageRatio(count, limit),
			Failed:     failed[category],
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
