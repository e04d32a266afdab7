// Package responses defines the JSON bodies of the docsite HTTP API.
package responses

import "time"

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Documents int       `json:"documents"`
	BuildType string    `json:"build_type"`
}

// ContributorsResponse is the stored contributor count of one document.
type ContributorsResponse struct {
	Repo      string    `json:"repo"`
	Version   string    `json:"version,omitempty"`
	Locale    string    `json:"locale"`
	FilePath  string    `json:"file_path"`
	Count     int       `json:"count"`
	Authors   []string  `json:"authors,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoticeResponse describes the notice a page would carry.
type NoticeResponse struct {
	URL           string `json:"url"`
	Kind          string `json:"kind"`
	Repo          string `json:"repo"`
	Version       string `json:"version,omitempty"`
	StableVersion string `json:"stable_version,omitempty"`
	TargetLink    string `json:"target_link,omitempty"`
	PageType      string `json:"page_type"`
}
