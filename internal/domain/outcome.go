package domain

// Status classifies what happened to one document during a run.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome is the per-document result of a run. One bad record never aborts
// the batch; its failure is recorded here instead of being swallowed.
type Outcome struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Status     Status `json:"status"`
	Reason     string `json:"reason,omitempty"`
}
