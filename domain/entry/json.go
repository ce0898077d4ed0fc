package entry

import "encoding/json"

func marshalFlat(e Entry) ([]byte, error) {
	flat := make(map[string]any, len(e.Fields)+5)
	for k, v := range e.Fields {
		flat[k] = v
	}
	flat[FieldUserID] = e.UserID
	flat[FieldEntryID] = e.EntryID
	flat[FieldEntityType] = string(e.EntityType)
	flat[FieldCreatedAt] = e.CreatedAt
	flat[FieldUpdatedAt] = e.UpdatedAt
	return json.Marshal(flat)
}

func unmarshalFlat(data []byte, e *Entry) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if v, ok := flat[FieldUserID].(string); ok {
		e.UserID = v
	}
	if v, ok := flat[FieldEntryID].(string); ok {
		e.EntryID = v
	}
	if v, ok := flat[FieldEntityType].(string); ok {
		e.EntityType = EntityType(v)
	}
	if v, ok := flat[FieldCreatedAt].(string); ok {
		e.CreatedAt = v
	}
	if v, ok := flat[FieldUpdatedAt].(string); ok {
		e.UpdatedAt = v
	}
	e.Fields = StripServerOwned(flat)
	return nil
}
