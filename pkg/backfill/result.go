package backfill

import "fmt"

// Result contains statistics from a backfill run.
type Result struct {
	Scanned  int
	Embedded int
	Failed   int
}

// Summary returns a human-readable summary of the backfill result.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Backfill complete: %d scanned, %d embedded, %d failed",
		r.Scanned, r.Embedded, r.Failed,
	)
}
