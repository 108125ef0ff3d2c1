package models

import "time"

// Report is an incident report filed by a user. NotifyUserIDs are the
// reporter's chosen safety contacts for this incident.
type Report struct {
	ID            string    `json:"id"`
	ReporterID    string    `json:"reporterId"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Location      string    `json:"location,omitempty"`
	NotifyUserIDs []string  `json:"notifyUserIds,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ReportComment struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"reportId"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateReportParams struct {
	Category      string
	Description   string
	Location      string
	NotifyUserIDs []string
}
