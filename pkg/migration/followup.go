package migration

import "fmt"

// FollowUpLog is the ordered list of gaps the operator has to fix by hand.
type FollowUpLog struct {
	entries  []string
	onAppend func(string)
}

// NewFollowUpLog returns an empty log. onAppend, when set, sees every entry.
func NewFollowUpLog(onAppend func(string)) *FollowUpLog {
	return &FollowUpLog{onAppend: onAppend}
}

// Addf appends a formatted entry.
func (l *FollowUpLog) Addf(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	l.entries = append(l.entries, entry)
	if l.onAppend != nil {
		l.onAppend(entry)
	}
}

// Entries returns a copy of the entries in append order.
func (l *FollowUpLog) Entries() []string {
	return append([]string(nil), l.entries...)
}

// Len returns the number of entries.
func (l *FollowUpLog) Len() int {
	return len(l.entries)
}
