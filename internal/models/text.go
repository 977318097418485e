package models

import (
	"bytes"
	"encoding/json"
)

// Text is a display value the backend may send as a string, number, bool or
// null. Numbers and bools keep their JSON spelling; null is empty. Objects
// and arrays are kept as compact JSON so a record never fails to decode
// because of one descriptive field.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case b[0] == '{' || b[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*t = Text(buf.String())
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }
