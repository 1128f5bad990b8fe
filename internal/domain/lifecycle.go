package domain

// DeleteResult describes the outcome of a guarded delete. When dependents
// exist the record is deactivated instead of removed.
type DeleteResult struct {
	ID          string `json:"id"`
	Deleted     bool   `json:"deleted"`
	Deactivated bool   `json:"deactivated"`
	Reason      string `json:"reason,omitempty"`
}

func Removed(id string) *DeleteResult {
	return &DeleteResult{ID: id, Deleted: true}
}

func Deactivated(id, reason string) *DeleteResult {
	return &DeleteResult{ID: id, Deactivated: true, Reason: reason}
}
