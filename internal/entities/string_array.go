package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray is stored as a JSON list so both sqlite and postgres can hold it.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func (a *StringArray) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = StringArray{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported StringArray source %T", value)
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	*a = items
	return nil
}
