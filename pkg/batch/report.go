package batch

// Outcome is the terminal state of one batch item.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
)

// ErrorDetail records why an item failed: a stable kind for machine
// consumers and the full message for humans.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Item is the recorded outcome of one input. Written exactly once by the
// worker that owned it, never mutated afterward. Artifact carries the
// produced bytes in memory; it is excluded from the JSON report, which
// records outcomes rather than payloads.
type Item struct {
	ID       string       `json:"id"`
	Index    int          `json:"index"`
	Outcome  Outcome      `json:"outcome"`
	Artifact []byte       `json:"-"`
	Err      *ErrorDetail `json:"error,omitempty"`
}

// Report aggregates a batch run. Items preserves input order, and
// Succeeded+Failed+Cancelled == Total always holds.
type Report struct {
	Operation Operation `json:"operation"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Cancelled int       `json:"cancelled"`
	Items     []Item    `json:"items"`
}
