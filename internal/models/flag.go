package models

import "strings"

// Flag is a single warning emitted by one heuristic check against one
// submission. Flags accumulate in check evaluation order, which is part of
// the output contract (reports preserve it).
type Flag struct {
	Check    string  `json:"check"`
	Message  string  `json:"message"`
	Evidence float64 `json:"evidence,omitempty"`
}

// FlagType reduces a flag message to its category for aggregation:
// everything before the first '(' or ':'.
func FlagType(message string) string {
	if i := strings.IndexByte(message, '('); i >= 0 {
		message = message[:i]
	}
	if i := strings.IndexByte(message, ':'); i >= 0 {
		message = message[:i]
	}
	return strings.TrimSpace(message)
}

// Priority buckets used in report summaries.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

func PriorityForFlagCount(n int) string {
	switch {
	case n >= 10:
		return PriorityHigh
	case n >= 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// FlagMessages projects a flag list to its ordered messages.
func FlagMessages(flags []Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Message)
	}
	return out
}
