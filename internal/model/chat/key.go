package chat

import "strings"

// ConversationKey identifies a two-party history independently of who
// sent first: (alice,bob) and (bob,alice) normalize to the same key.
// Lookups and appends must go through the same normalization.
func ConversationKey(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
