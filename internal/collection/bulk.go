package collection

import "fmt"

// BulkStatus classifies the outcome of one item in a bulk mutation.
type BulkStatus string

const (
	BulkSuccess BulkStatus = "SUCCESS"
	BulkSkipped BulkStatus = "SKIPPED"
	BulkFailed  BulkStatus = "FAILED"
)

// BulkDetail is the per-item outcome. Details preserve the input order.
type BulkDetail struct {
	BookID    int        `json:"bookId"`
	Status    BulkStatus `json:"status"`
	Reason    string     `json:"reason"`
	BookTitle string     `json:"bookDescription"`
}

// BulkResult aggregates a bulk add or remove. Success means the call
// achieved something useful: at least one mutation applied, or everything
// was already in the requested state.
type BulkResult struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Requested int          `json:"totalRequested"`
	Succeeded int          `json:"successfullyProcessed"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
	Details   []BulkDetail `json:"details"`
}

func (r *BulkResult) finish(verb string) {
	r.Success = r.Succeeded > 0 || (r.Skipped > 0 && r.Failed == 0)
	r.Message = fmt.Sprintf("Processed %d books: %d %s, %d skipped, %d failed",
		r.Requested, r.Succeeded, verb, r.Skipped, r.Failed)
}
