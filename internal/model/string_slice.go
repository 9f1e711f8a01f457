package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringSlice stores a list of strings as a single comma separated column.
// Elements can't contain commas.
type StringSlice []string

// Value implements the driver.Valuer interface.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}

	if err := s.Validate(); err != nil {
		return "", err
	}

	return strings.Join(s, ","), nil
}

// Validate reports the first element that can't be stored
func (s StringSlice) Validate() error {
	for _, v := range s {
		if strings.Contains(v, ",") {
			return fmt.Errorf("unsafe string %q, commas aren't allowed", v)
		}
	}

	return nil
}

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("failed to scan StringSlice, %v", value)
	}

	if str == "" {
		*s = StringSlice{}
	} else {
		*s = strings.Split(str, ",")
	}

	return nil
}
