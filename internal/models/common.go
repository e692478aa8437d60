package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SoftDelete is embedded in every record that is never physically removed
// through the API.
type SoftDelete struct {
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at"`
	DeletedBy *uuid.UUID `json:"deleted_by,omitempty"`
}

// Deleted is the body returned by delete routes that echo a flag.
type Deleted struct {
	Deleted bool `json:"deleted"`
}

// Message is a plain acknowledgement body.
type Message struct {
	Message string `json:"message"`
}

// JSONObject is a free-form JSON object stored in a jsonb column.
type JSONObject map[string]interface{}

// Value implements driver.Valuer.
func (o JSONObject) Value() (driver.Value, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o)
}

// Scan implements sql.Scanner.
func (o *JSONObject) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = JSONObject{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONObject", src)
	}

	m := make(map[string]interface{})
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("invalid json object: %w", err)
	}
	*o = m
	return nil
}
