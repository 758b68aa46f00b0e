package models

import "time"

// MMetricPoint represents one stored hourly metric row for a project.
// T is always truncated to the top of an hour; together with ProjectID it
// forms the natural key of the row.
type MMetricPoint struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	T         time.Time `json:"t"`
	VolumeUsd float64   `json:"volume_usd"`
	FeesUsd   float64   `json:"fees_usd"`
	Trades    int       `json:"trades"`
}
