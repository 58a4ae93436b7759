package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONPayload is raw JSON stored as TEXT
type JSONPayload json.RawMessage

// Scan implements the sql.Scanner interface for JSONPayload
func (j *JSONPayload) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case string:
		*j = append((*j)[:0], v...)
	case []byte:
		*j = append((*j)[:0], v...)
	default:
		return fmt.Errorf("cannot scan type %T into JSONPayload", value)
	}

	if len(*j) > 0 && !json.Valid(*j) {
		return fmt.Errorf("stored payload is not valid JSON")
	}
	return nil
}

// Value implements the driver.Valuer interface for JSONPayload
func (j JSONPayload) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

// Decode unmarshals the payload into v
func (j JSONPayload) Decode(v any) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, v)
}

// NewJSONPayload marshals v into a payload
func NewJSONPayload(v any) (JSONPayload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSONPayload(b), nil
}

// MarshalJSON emits the payload verbatim
func (j JSONPayload) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores data verbatim
func (j *JSONPayload) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}
