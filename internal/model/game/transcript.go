package game

// Role tags a transcript entry with its speaker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is a single role-tagged message in a session's conversation history.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered, append-only conversation log sent to the
// generator every turn. The first entry is always the system prompt.
//
// A transcript is touched only by its session's own engine goroutine, so the
// methods carry no locking.
type Transcript struct {
	entries []Entry
}

// NewTranscript returns a transcript seeded with the session's system prompt.
func NewTranscript(systemPrompt string) *Transcript {
	t := &Transcript{entries: make([]Entry, 0, 16)}
	t.entries = append(t.entries, Entry{Role: RoleSystem, Content: systemPrompt})
	return t
}

// Append records one message at the end of the log.
func (t *Transcript) Append(role Role, content string) {
	t.entries = append(t.entries, Entry{Role: role, Content: content})
}

// Snapshot returns a copy of the log in insertion order.
func (t *Transcript) Snapshot() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len reports the number of entries, including the system prompt.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Trim drops the oldest non-system entries until at most max remain.
// Extension point for long sessions; nothing applies a cap by default.
func (t *Transcript) Trim(max int) {
	if max < 1 || len(t.entries) <= max {
		return
	}
	head := t.entries[:1]
	tail := t.entries[len(t.entries)-(max-1):]
	t.entries = append(append(make([]Entry, 0, max), head...), tail...)
}
