package services

import "regexp"

// causePattern maps a failure signature to its human-readable label.
type causePattern struct {
	re    *regexp.Regexp
	label string
}

// causePatterns is the static fallback used when the generation provider is
// unavailable. Patterns are tested in order against the concatenated evidence;
// the first match wins, so more specific signatures come first.
var causePatterns = []causePattern{
	{regexp.MustCompile(`(?i)connection (refused|failed|reset)|could not connect|connection error`), "Database connection failure"},
	{regexp.MustCompile(`(?i)timed? ?out|timeout`), "Request timeout occurred"},
	{regexp.MustCompile(`(?i)authentication failed|unauthorized|invalid credentials|login failed`), "Authentication failure"},
	{regexp.MustCompile(`(?i)permission denied|access denied|forbidden`), "Permission denied"},
	{regexp.MustCompile(`(?i)out of memory|memory exhausted|oom killed`), "Out of memory condition"},
	{regexp.MustCompile(`(?i)disk full|no space left on device`), "Disk space exhausted"},
	{regexp.MustCompile(`(?i)bad request|invalid (request|input|parameter)`), "Invalid request received"},
	{regexp.MustCompile(`(?i)service unavailable|\b503\b`), "Upstream service unavailable"},
	{regexp.MustCompile(`(?i)internal server error|\b500\b`), "Internal server error"},
}

// unknownCause is returned when no pattern matches the evidence.
const unknownCause = "Unable to determine cause from available evidence"

// matchCause returns the label of the first pattern matching the evidence text.
func matchCause(evidence string) string {
	for _, p := range causePatterns {
		if p.re.MatchString(evidence) {
			return p.label
		}
	}
	return unknownCause
}

// querySynonyms expands domain terms so the keyword fallback also finds logs
// phrased differently from the question.
var querySynonyms = map[string][]string{
	"payment":  {"gateway", "checkout", "billing", "transaction", "stripe"},
	"database": {"db", "sql", "connection", "postgres", "mysql"},
	"security": {"auth", "breach", "attack", "unauthorized"},
	"network":  {"connection", "dns", "socket", "unreachable"},
	"crash":    {"panic", "fatal", "segfault"},
	"slow":     {"latency", "duration", "performance"},
}
