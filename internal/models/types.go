package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores an ordered list of strings as a JSON text column so the
// same model works on Postgres and the sqlite test databases.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported string list source type %T", value)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}

	return json.Unmarshal(data, l)
}

func (StringList) GormDataType() string {
	return "text"
}
