package intent

import "regexp"

// Intent says whether a free-text message should be answered with text
// or with a generated image.
type Intent string

const (
	Text  Intent = "text"
	Image Intent = "image"
)

// rule pairs a compiled pattern with the intent it produces. The rules
// are checked in order and the first match wins; everything that falls
// through is a text request.
type rule struct {
	pattern *regexp.Regexp
	intent  Intent
}

var rules = []rule{
	{regexp.MustCompile(`(?i)show (me )?(an?|the)? ?(image|picture|photo|render|drawing)`), Image},
	{regexp.MustCompile(`(?i)generate (me )?(an?|the)? ?(image|picture|photo|render|drawing)`), Image},
	{regexp.MustCompile(`(?i)draw (me )?(an?|the)? ?(image|picture|photo|render|drawing)`), Image},
	{regexp.MustCompile(`(?i)create (me )?(an?|the)? ?(image|picture|photo|render|drawing)`), Image},
	{regexp.MustCompile(`(?i)visualize`), Image},
	// Catches phrasings like "a picture of my living room" that the
	// verb patterns miss.
	{regexp.MustCompile(`(?i)(picture|image|photo|drawing) of`), Image},
}

// Classify maps a message to its generation intent. It is pure and
// total: any input, including the empty string, yields a result. There
// are no negative patterns, so "I don't want a picture of this" still
// classifies as an image request.
func Classify(message string) Intent {
	for _, r := range rules {
		if r.pattern.MatchString(message) {
			return r.intent
		}
	}
	return Text
}

// IsImageRequest is a convenience wrapper for call sites that only
// need the boolean.
func IsImageRequest(message string) bool {
	return Classify(message) == Image
}
