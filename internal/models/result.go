package models

import "time"

// SyncResult summarizes one synchronization run.
type SyncResult struct {
	CurrentCount  int       `json:"current_count"`
	PreviousCount int       `json:"previous_count"`
	RemovedCount  int       `json:"removed_count"`
	StartedAt     time.Time `json:"started_at"`
	Duration      string    `json:"duration"`
}

// RemovalOutcome records what happened for one account during a removal
// batch. Used for reporting only, never for control flow.
type RemovalOutcome struct {
	Username      string   `json:"username"`
	Attempted     bool     `json:"attempted"`
	RemovedTitles []string `json:"removed_titles,omitempty"`
}

// EventResult summarizes a single-item removal triggered by a notification.
type EventResult struct {
	Found  bool     `json:"found"`
	Titles []string `json:"titles,omitempty"`
}

// CollectResult aggregates per-account outcomes into an EventResult.
func CollectResult(outcomes []RemovalOutcome) EventResult {
	var res EventResult
	for _, o := range outcomes {
		if len(o.RemovedTitles) > 0 {
			res.Found = true
			res.Titles = append(res.Titles, o.RemovedTitles...)
		}
	}
	return res
}
