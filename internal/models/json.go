package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON is a loosely typed JSON column.
type JSON map[string]interface{}

// Value serializes for database writes.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan deserializes from database reads.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported JSON column type")
	}
}
