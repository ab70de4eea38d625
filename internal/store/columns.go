package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func parseTime(src any) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v.UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case []byte:
		return parseTime(string(v))
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", v)
	}
	return time.Time{}, fmt.Errorf("unsupported time value %T", src)
}

// utcTime scans a non-null timestamp column and normalizes it to UTC.
type utcTime struct{ t *time.Time }

func (u utcTime) Scan(src any) error {
	if src == nil {
		*u.t = time.Time{}
		return nil
	}
	t, err := parseTime(src)
	if err != nil {
		return err
	}
	*u.t = t
	return nil
}

// nullTime scans a nullable timestamp column into a *time.Time.
type nullTime struct{ t **time.Time }

func (n nullTime) Scan(src any) error {
	if src == nil {
		*n.t = nil
		return nil
	}
	t, err := parseTime(src)
	if err != nil {
		return err
	}
	*n.t = &t
	return nil
}

func timeValue(t time.Time) any {
	return t.UTC()
}

func nullTimeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// jsonColumn stores a nested value as JSON text.
type jsonColumn[T any] struct{ v *T }

func asJSON[T any](v *T) jsonColumn[T] { return jsonColumn[T]{v} }

func (j jsonColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j jsonColumn[T]) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported json value %T", src)
	}
	return json.Unmarshal(b, j.v)
}
