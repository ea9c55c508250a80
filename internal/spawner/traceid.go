package spawner

import "go.jetify.com/typeid"

// tracePrefix names the typeid prefix used for spawn correlation ids.
// These ids are internal-only: they appear in structured log lines when
// a spawn fails, never in user-visible job-control output, and are
// unrelated to the dense integer job_id defined in spec.md §3.
type tracePrefix struct{}

func (tracePrefix) Prefix() string { return "spn" }

// traceID is a spawn-correlation id.
type traceID struct {
	typeid.TypeID[tracePrefix]
}

// newTraceID returns a new traceID, or the zero value if generation
// fails (never fatal — it's a logging aid, not a correctness
// requirement).
func newTraceID() traceID {
	id, err := typeid.New[traceID]()
	if err != nil {
		return traceID{}
	}
	return id
}
