package sync

// UpsertOutcome records what happened to one batch item
type UpsertOutcome struct {
	Index   int    `json:"index"`
	Key     string `json:"key"`
	Created bool   `json:"created"`
}

// BatchResult summarizes one applied batch. A batch is only ever applied
// whole, so Created+Updated always equals the batch size.
type BatchResult struct {
	Created int             `json:"created"`
	Updated int             `json:"updated"`
	Items   []UpsertOutcome `json:"items"`
}

// Total returns the number of processed items
func (r *BatchResult) Total() int {
	return r.Created + r.Updated
}
