package models

// HealthCheckResponse returns the health check response struct
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// DashboardRecord is one license record decorated with its expiry status for
// dashboard display.
type DashboardRecord struct {
	Record Record `json:"record"`

	DaysLeft       int  `json:"daysLeft"`
	IsValid        bool `json:"isValid"`
	IsExpiringSoon bool `json:"isExpiringSoon"`
}

// DashboardSection is the per-category slice of the dashboard response.
// Limit of -1 means the owner's tier is unbounded for this category.
type DashboardSection struct {
	Category   string            `json:"category"`
	Records    []DashboardRecord `json:"records"`
	Count      int               `json:"count"`
	Limit      int               `json:"limit"`
	UsageRatio float64           `json:"usageRatio"`
	Failed     bool              `json:"failed"`
}

// DashboardResponse is the aggregated view for one owner. Sections always
// contain every category in declared order, even when empty.
type DashboardResponse struct {
	Sections []DashboardSection `json:"sections"`
}

// LimitCheckResponse reports whether the owner may add another record of a
// category under their tier.
type LimitCheckResponse struct {
	CanAdd       bool   `json:"canAdd"`
	CurrentCount int    `json:"currentCount"`
	Limit        int    `json:"limit"`
	Category     string `json:"category"`
}

// CheckoutSessionResponse is returned after creating a stripe checkout session.
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
