package sqlstore

import (
	"fmt"
	"time"
)

// TimeLayout is a fixed-width UTC layout. Text columns written with it sort
// in chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// TextTime formats t for engines without a native timestamp type
func TextTime(t time.Time) any {
	return t.UTC().Format(TimeLayout)
}

// NativeTime passes t through in UTC
func NativeTime(t time.Time) any {
	return t.UTC()
}

// timeValue scans timestamps stored either natively or as text
type timeValue struct {
	Time time.Time
}

func (v *timeValue) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		v.Time = time.Time{}
		return nil
	case time.Time:
		v.Time = t.UTC()
		return nil
	case string:
		return v.parse(t)
	case []byte:
		return v.parse(string(t))
	}
	return fmt.Errorf("unsupported timestamp type %T", src)
}

var textLayouts = []string{
	TimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func (v *timeValue) parse(s string) error {
	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			v.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
