package entry

import "time"

// TimeFormat is the ISO-8601 layout used for createdAt/updatedAt. Millisecond
// precision keeps update ordering observable within a single second.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats a time in the canonical entry timestamp layout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// Server-owned attribute names. These are stamped by the backend and stripped
// from any client-supplied payload before create or update.
const (
	FieldUserID     = "userId"
	FieldEntryID    = "entryId"
	FieldEntityType = "entityType"
	FieldCreatedAt  = "createdAt"
	FieldUpdatedAt  = "updatedAt"
)

// Entry is a single persisted record of any entity type, keyed by
// (UserID, EntryID). Fields holds the entity-type-specific payload; it never
// contains server-owned keys.
type Entry struct {
	UserID     string         `json:"userId"`
	EntryID    string         `json:"entryId"`
	EntityType EntityType     `json:"entityType"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
	Fields     map[string]any `json:"-"`
}

// StripServerOwned returns a copy of fields without the server-owned keys.
// The input map is not modified.
func StripServerOwned(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case FieldUserID, FieldEntryID, FieldEntityType, FieldCreatedAt, FieldUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}

// New builds a fresh entry for the given user and payload. The entry id and
// both timestamps are stamped here; createdAt equals updatedAt on creation.
func New(userID string, entityType EntityType, fields map[string]any, now time.Time) Entry {
	ts := Timestamp(now)
	return Entry{
		UserID:     userID,
		EntryID:    NewID(entityType, now),
		EntityType: entityType,
		CreatedAt:  ts,
		UpdatedAt:  ts,
		Fields:     StripServerOwned(fields),
	}
}

// MarshalJSON flattens Fields alongside the fixed attributes so an entry
// serializes the way clients stored it: one flat JSON object.
func (e Entry) MarshalJSON() ([]byte, error) {
	return marshalFlat(e)
}

// UnmarshalJSON is the inverse of MarshalJSON: fixed attributes are pulled
// out and everything else lands in Fields.
func (e *Entry) UnmarshalJSON(data []byte) error {
	return unmarshalFlat(data, e)
}
