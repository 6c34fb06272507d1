package entity

// EvaluationResult holds the categorized places produced by an evaluator.
// Any category may be empty.
type EvaluationResult struct {
	Love   []string `json:"love"`
	Career []string `json:"career"`
	Health []string `json:"health"`
}

// Top returns a copy with every category cut to at most n entries.
// Nil categories come back as empty slices so they encode as [] not null.
func (r EvaluationResult) Top(n int) EvaluationResult {
	return EvaluationResult{
		Love:   head(r.Love, n),
		Career: head(r.Career, n),
		Health: head(r.Health, n),
	}
}

func head(items []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(items) < n {
		n = len(items)
	}
	out := make([]string, n)
	copy(out, items[:n])
	return out
}
