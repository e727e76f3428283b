// Package dates reduces timestamps to the local calendar day that identifies
// a journal entry.
package dates

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Layout is the storage and display form of a calendar day.
const Layout = "2006-01-02"

// Normalize converts t to local time and truncates it to midnight.
func Normalize(t time.Time) time.Time {
	return NormalizeIn(t, time.Local)
}

// NormalizeIn is Normalize against an explicit location.
func NormalizeIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Key returns the YYYY-MM-DD form of the local day containing t.
func Key(t time.Time) string {
	return Normalize(t).Format(Layout)
}

// FromKey parses a YYYY-MM-DD key as a local midnight.
func FromKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(key), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", key, err)
	}
	return t, nil
}

// Parse accepts a bare day (interpreted as local), a local "YYYY-MM-DD HH:MM:SS"
// timestamp, or an RFC3339 timestamp, and returns the normalized day.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(Layout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return Normalize(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return Normalize(t), nil
}

// Today is the normalized current day.
func Today() time.Time {
	return Normalize(time.Now())
}

// Day is a normalized calendar day. It is stored as its Key.
type Day struct {
	time.Time
}

// DayOf normalizes t into a Day.
func DayOf(t time.Time) Day {
	return Day{Normalize(t)}
}

func (d Day) Key() string {
	return d.Format(Layout)
}

func (d Day) String() string {
	return d.Key()
}

// Value implements driver.Valuer.
func (d Day) Value() (driver.Value, error) {
	return Key(d.Time), nil
}

// Scan implements sql.Scanner.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.scanKey(v)
	case []byte:
		return d.scanKey(string(v))
	case time.Time:
		d.Time = Normalize(v)
		return nil
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into dates.Day", src)
	}
}

func (d *Day) scanKey(key string) error {
	// mattn/go-sqlite3 may hand back a full timestamp for legacy rows
	if len(key) > len(Layout) {
		key = key[:len(Layout)]
	}
	t, err := FromKey(key)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Key())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := Parse(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Set is a deduplicated set of calendar days.
type Set map[string]struct{}

func NewSet(days ...time.Time) Set {
	s := make(Set, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

func (s Set) Add(t time.Time) {
	s[Key(t)] = struct{}{}
}

func (s Set) Has(t time.Time) bool {
	_, ok := s[Key(t)]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Sorted returns the days in ascending order.
func (s Set) Sorted() []time.Time {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		t, err := FromKey(k)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}
