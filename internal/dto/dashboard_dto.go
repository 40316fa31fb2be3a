package dto

import (
	"time"

	"smartfusion-dashboard/pkg/ragapi"
)

// IngestMetadata are the form fields accompanying an upload or link.
type IngestMetadata struct {
	Country    string `json:"country" form:"country" validate:"required"`
	JobArea    string `json:"job_area" form:"job_area" validate:"required"`
	SourceType string `json:"source_type" form:"source_type" validate:"required"`
}

type IngestionStatus struct {
	InFlight          bool     `json:"in_flight"`
	Error             string   `json:"error,omitempty"`
	RecentlySubmitted []string `json:"recently_submitted"`
}

type DocumentListResponse struct {
	Documents []string `json:"documents"`
	Selected  []string `json:"selected"`
}

type SelectionRequest struct {
	Filenames []string `json:"filenames"`
}

type SearchRequest struct {
	Country    string `json:"country"`
	JobArea    string `json:"job_area"`
	SourceType string `json:"source_type"`
	Question   string `json:"question"`
}

type SearchResponse struct {
	Results []ragapi.SearchResult `json:"results"`
	// UniqueDocuments de-duplicates by filename for the "Found N
	// documents" display; Results stays intact.
	UniqueDocuments []string `json:"unique_documents"`
}

type AskRequest struct {
	Question string `json:"question"`
}

type ExchangeResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ChatHistoryResponse struct {
	Messages []ragapi.Message `json:"messages"`
	Pending  string           `json:"pending"`
	Phase    string           `json:"phase"`
	Error    string           `json:"error,omitempty"`
}

type VoiceStatus struct {
	Recording      bool   `json:"recording"`
	PlaybackActive bool   `json:"playback_active"`
	Error          string `json:"error,omitempty"`
}

type PlaybackToggleRequest struct {
	Text string `json:"text"`
}

// Notification is pushed to connected dashboard views over the
// websocket hub when shared state changes behind their back.
type Notification struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}
