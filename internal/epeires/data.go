package epeires

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// rawEvent is an event as returned by the fullcalendar feed. Only the
// fields the report needs are mapped.
type rawEvent struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Title          string      `json:"title"`
	StartDate      eventTime   `json:"start_date"`
	EndDate        *eventTime  `json:"end_date"`
	CategoryRootID int         `json:"category_root_id"`
	CategoryRoot   string      `json:"category_root"`
	StatusID       int         `json:"status_id"`
	StatusName     string      `json:"status_name"`
	ImpactName     string      `json:"impact_name"`
	Fields         eventFields `json:"fields"`
}

// eventTime tolerates the two timestamp layouts the feed uses.
type eventTime struct {
	time.Time
}

func (t *eventTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", s)
}

// eventFields keeps the custom field values in document order. Events
// without custom fields ship an empty JSON array instead of an object,
// which decodes to nil.
type eventFields []string

func (f *eventFields) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] == '[' || string(trimmed) == "null" {
		*f = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}

	var values []string
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			// non string field value, keep the slot to preserve order
			v = ""
		}
		values = append(values, v)
	}

	*f = values
	return nil
}

// Description returns the second custom field, which holds the free
// text description on the forms the report cares about.
func (f eventFields) Description() string {
	if len(f) >= 2 {
		return f[1]
	}
	return ""
}
