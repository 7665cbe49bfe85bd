package chat

// Message is one stored chat message. Messages are append-only: they
// are created on send and never mutated or deleted afterwards.
type Message struct {
	ID        string `json:"id,omitempty"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
