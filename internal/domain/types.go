package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string persisted as a JSON text column. SQLite has no
// native array type, so lists of service names and document URLs are stored
// serialized and decoded on scan.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Empty and NULL columns decode to nil.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("stringlist: unsupported scan type %T", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}
