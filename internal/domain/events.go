package domain

import "time"

const RoutingKeyReportViewed = "report.viewed"

// ReportViewed is published after a report was served successfully.
type ReportViewed struct {
	Report     ReportID  `json:"report"`
	Rows       int       `json:"rows"`
	Subject    string    `json:"subject,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Cached     bool      `json:"cached"`
	OccurredAt time.Time `json:"occurred_at"`
}
