package notify

import "time"

// Event is a single notification to be routed.
type Event struct {
	// Metadata fields of the notification, e.g. "hostname" or "type".
	Fields    map[string]string
	Severity  Severity
	Timestamp time.Time
}

// Field returns the value of a metadata field and whether it is present.
func (e Event) Field(key string) (string, bool) {
	if e.Fields == nil {
		return "", false
	}
	v, ok := e.Fields[key]
	return v, ok
}
