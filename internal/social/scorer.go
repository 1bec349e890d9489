package social

import "strings"

var (
	// DefaultUserWords scores a single user's feed.
	DefaultUserWords = []string{"good", "great", "excellent", "incredible", "cool"}

	// DefaultGlobalWords scores the distinct messages of the whole registry.
	DefaultGlobalWords = []string{"good", "great", "excellent", "perfect", "awesome"}
)

// Scorer decides whether a message is positive by case-insensitive substring
// match against a fixed word list. The zero value never matches.
type Scorer struct {
	words []string
}

// NewScorer builds a Scorer. Words are trimmed and lower-cased; blanks are dropped.
func NewScorer(words ...string) Scorer {
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			normalized = append(normalized, w)
		}
	}
	return Scorer{words: normalized}
}

// Positive reports whether message contains any of the words.
func (s Scorer) Positive(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range s.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Count returns how many messages are positive. Each message counts at most once.
func (s Scorer) Count(messages []string) int {
	n := 0
	for _, m := range messages {
		if s.Positive(m) {
			n++
		}
	}
	return n
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
