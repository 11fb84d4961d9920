package models

import "time"

// Geltungsbereich einer Löschanfrage.
const (
	ScopeSelected = "selected"
	ScopeFiltered = "filtered"
)

// DeleteRequest ist der Body von POST /api/delete-duplicates.
type DeleteRequest struct {
	TargetIDs        []int64      `json:"target_ids" binding:"required"`
	DeleteScope      string       `json:"delete_scope" binding:"omitempty,oneof=selected filtered"`
	FilterConditions *FilterInput `json:"filter_conditions"`
}

// RestoreRequest ist der Body von POST /api/restore-records.
type RestoreRequest struct {
	TargetIDs []int64 `json:"target_ids" binding:"required"`
}

// MutationResult beschreibt das Ergebnis einer Bulk-Statusänderung.
// Success impliziert leere FailedIDs, ein Fehlschlag impliziert Affected == 0.
type MutationResult struct {
	Success   bool
	Affected  int64
	FailedIDs []int64
	Timestamp time.Time
}

// DeleteResponse ist die Antwort auf eine Löschanfrage.
type DeleteResponse struct {
	Success      bool      `json:"success"`
	DeletedCount int64     `json:"deleted_count"`
	FailedIDs    []int64   `json:"failed_ids"`
	Timestamp    time.Time `json:"timestamp"`
}

// RestoreResponse ist die Antwort auf eine Wiederherstellungsanfrage.
type RestoreResponse struct {
	Success       bool      `json:"success"`
	RestoredCount int64     `json:"restored_count"`
	FailedIDs     []int64   `json:"failed_ids"`
	Timestamp     time.Time `json:"timestamp"`
}
